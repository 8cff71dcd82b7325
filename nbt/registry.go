package nbt

import (
	"fmt"

	"github.com/Neumenon/nbt/debug"
)

// TagType bundles the behavior for one tag kind: zero-value
// construction, payload decode, payload encode, and an optional
// textual form for extension kinds. Read and Write handle the payload
// only; the enclosing id and name are handled by the Reader and
// Writer themselves.
type TagType struct {
	ID   TagID
	Name string

	Make  func() *Tag
	Read  func(*Reader) (*Tag, error)
	Write func(*Writer, *Tag) error

	// Emit renders the tag's textual form. Built-in kinds leave it
	// nil; the renderer handles them directly. Extension kinds
	// without an Emit hook fail to render.
	Emit func(*Tag) (string, error)
}

// TypeRegistry maps tag ids to behavior bundles. A registry is plain
// configuration: configure it before use and share it read-only;
// concurrent registration is not supported.
type TypeRegistry struct {
	types map[TagID]*TagType
}

// NewTypeRegistry creates a registry pre-populated with the twelve
// built-in kinds. The end sentinel (id 0) is structural and never
// registered.
func NewTypeRegistry() *TypeRegistry {
	reg := &TypeRegistry{types: make(map[TagID]*TagType, 16)}
	for _, tt := range builtinTypes() {
		reg.types[tt.ID] = tt
	}
	return reg
}

// Register adds an extension bundle. Ids already taken, including the
// built-ins and the end sentinel, are rejected.
func (reg *TypeRegistry) Register(tt *TagType) error {
	if tt == nil || tt.Make == nil || tt.Read == nil || tt.Write == nil {
		return fmt.Errorf("nbt: incomplete behavior bundle")
	}
	if tt.ID == TagEnd {
		return fmt.Errorf("%w: id 0 is the end sentinel", ErrDuplicateTypeID)
	}
	if _, ok := reg.types[tt.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateTypeID, tt.ID)
	}
	reg.types[tt.ID] = tt
	debug.Logf("registry: registered id %d (%s)", tt.ID, tt.Name)
	return nil
}

// Resolve returns the bundle for an id.
func (reg *TypeRegistry) Resolve(id TagID) (*TagType, error) {
	tt, ok := reg.types[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTypeID, id)
	}
	return tt, nil
}

// Clone returns an independent copy. Registrations on the clone do
// not affect the original.
func (reg *TypeRegistry) Clone() *TypeRegistry {
	c := &TypeRegistry{types: make(map[TagID]*TagType, len(reg.types))}
	for id, tt := range reg.types {
		c.types[id] = tt
	}
	return c
}

// defaultRegistry backs the package-level entry points. Treated as
// immutable; callers needing extensions clone or build their own.
var defaultRegistry = NewTypeRegistry()

func builtinTypes() []*TagType {
	return []*TagType{
		{
			ID: TagByte, Name: "byte",
			Make: func() *Tag { return Byte(0) },
			Read: func(r *Reader) (*Tag, error) {
				v, err := r.ReadInt8()
				if err != nil {
					return nil, err
				}
				return Byte(v), nil
			},
			Write: func(w *Writer, t *Tag) error {
				v, err := t.AsByte()
				if err != nil {
					return err
				}
				return w.WriteInt8(v)
			},
		},
		{
			ID: TagShort, Name: "short",
			Make: func() *Tag { return Short(0) },
			Read: func(r *Reader) (*Tag, error) {
				v, err := r.ReadInt16()
				if err != nil {
					return nil, err
				}
				return Short(v), nil
			},
			Write: func(w *Writer, t *Tag) error {
				v, err := t.AsShort()
				if err != nil {
					return err
				}
				return w.WriteInt16(v)
			},
		},
		{
			ID: TagInt, Name: "int",
			Make: func() *Tag { return Int(0) },
			Read: func(r *Reader) (*Tag, error) {
				v, err := r.ReadInt32()
				if err != nil {
					return nil, err
				}
				return Int(v), nil
			},
			Write: func(w *Writer, t *Tag) error {
				v, err := t.AsInt()
				if err != nil {
					return err
				}
				return w.WriteInt32(v)
			},
		},
		{
			ID: TagLong, Name: "long",
			Make: func() *Tag { return Long(0) },
			Read: func(r *Reader) (*Tag, error) {
				v, err := r.ReadInt64()
				if err != nil {
					return nil, err
				}
				return Long(v), nil
			},
			Write: func(w *Writer, t *Tag) error {
				v, err := t.AsLong()
				if err != nil {
					return err
				}
				return w.WriteInt64(v)
			},
		},
		{
			ID: TagFloat, Name: "float",
			Make: func() *Tag { return Float(0) },
			Read: func(r *Reader) (*Tag, error) {
				v, err := r.ReadFloat32()
				if err != nil {
					return nil, err
				}
				return Float(v), nil
			},
			Write: func(w *Writer, t *Tag) error {
				v, err := t.AsFloat()
				if err != nil {
					return err
				}
				return w.WriteFloat32(v)
			},
		},
		{
			ID: TagDouble, Name: "double",
			Make: func() *Tag { return Double(0) },
			Read: func(r *Reader) (*Tag, error) {
				v, err := r.ReadFloat64()
				if err != nil {
					return nil, err
				}
				return Double(v), nil
			},
			Write: func(w *Writer, t *Tag) error {
				v, err := t.AsDouble()
				if err != nil {
					return err
				}
				return w.WriteFloat64(v)
			},
		},
		{
			ID: TagByteArray, Name: "byte_array",
			Make: func() *Tag { return ByteArray(nil) },
			Read: func(r *Reader) (*Tag, error) {
				n, err := r.readElemCount()
				if err != nil {
					return nil, err
				}
				b, err := r.ReadBytes(n)
				if err != nil {
					return nil, err
				}
				return ByteArray(b), nil
			},
			Write: func(w *Writer, t *Tag) error {
				b, err := t.AsByteArray()
				if err != nil {
					return err
				}
				if err := w.writeElemCount(len(b)); err != nil {
					return err
				}
				return w.WriteBytes(b)
			},
		},
		{
			ID: TagString, Name: "string",
			Make: func() *Tag { return String("") },
			Read: func(r *Reader) (*Tag, error) {
				s, err := r.ReadString()
				if err != nil {
					return nil, err
				}
				return String(s), nil
			},
			Write: func(w *Writer, t *Tag) error {
				s, err := t.AsString()
				if err != nil {
					return err
				}
				return w.WriteString(s)
			},
		},
		{
			ID: TagList, Name: "list",
			Make: func() *Tag { return List(TagEnd) },
			Read: func(r *Reader) (*Tag, error) {
				return r.readListPayload()
			},
			Write: func(w *Writer, t *Tag) error {
				return w.writeListPayload(t)
			},
		},
		{
			ID: TagCompound, Name: "compound",
			Make: func() *Tag { return Compound() },
			Read: func(r *Reader) (*Tag, error) {
				return r.readCompoundPayload()
			},
			Write: func(w *Writer, t *Tag) error {
				return w.writeCompoundPayload(t)
			},
		},
		{
			ID: TagIntArray, Name: "int_array",
			Make: func() *Tag { return IntArray(nil) },
			Read: func(r *Reader) (*Tag, error) {
				n, err := r.readElemCount()
				if err != nil {
					return nil, err
				}
				vals := make([]int32, 0, preallocCount(n))
				for i := 0; i < n; i++ {
					v, err := r.ReadInt32()
					if err != nil {
						return nil, err
					}
					vals = append(vals, v)
				}
				return IntArray(vals), nil
			},
			Write: func(w *Writer, t *Tag) error {
				vals, err := t.AsIntArray()
				if err != nil {
					return err
				}
				if err := w.writeElemCount(len(vals)); err != nil {
					return err
				}
				for _, v := range vals {
					if err := w.WriteInt32(v); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			ID: TagLongArray, Name: "long_array",
			Make: func() *Tag { return LongArray(nil) },
			Read: func(r *Reader) (*Tag, error) {
				n, err := r.readElemCount()
				if err != nil {
					return nil, err
				}
				vals := make([]int64, 0, preallocCount(n))
				for i := 0; i < n; i++ {
					v, err := r.ReadInt64()
					if err != nil {
						return nil, err
					}
					vals = append(vals, v)
				}
				return LongArray(vals), nil
			},
			Write: func(w *Writer, t *Tag) error {
				vals, err := t.AsLongArray()
				if err != nil {
					return err
				}
				if err := w.writeElemCount(len(vals)); err != nil {
					return err
				}
				for _, v := range vals {
					if err := w.WriteInt64(v); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

// preallocCount caps slice preallocation so a hostile element count
// cannot force a giant allocation before any data is read.
func preallocCount(n int) int {
	const limit = 4096
	if n > limit {
		return limit
	}
	return n
}
