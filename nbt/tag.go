package nbt

import (
	"fmt"
	"math"
)

// TagID identifies a tag kind on the wire.
type TagID uint8

const (
	TagEnd       TagID = 0
	TagByte      TagID = 1
	TagShort     TagID = 2
	TagInt       TagID = 3
	TagLong      TagID = 4
	TagFloat     TagID = 5
	TagDouble    TagID = 6
	TagByteArray TagID = 7
	TagString    TagID = 8
	TagList      TagID = 9
	TagCompound  TagID = 10
	TagIntArray  TagID = 11
	TagLongArray TagID = 12
)

// String returns the tag kind name.
func (id TagID) String() string {
	switch id {
	case TagEnd:
		return "end"
	case TagByte:
		return "byte"
	case TagShort:
		return "short"
	case TagInt:
		return "int"
	case TagLong:
		return "long"
	case TagFloat:
		return "float"
	case TagDouble:
		return "double"
	case TagByteArray:
		return "byte_array"
	case TagString:
		return "string"
	case TagList:
		return "list"
	case TagCompound:
		return "compound"
	case TagIntArray:
		return "int_array"
	case TagLongArray:
		return "long_array"
	default:
		return fmt.Sprintf("ext(%d)", uint8(id))
	}
}

// Tag is one node of a tag tree. The id is fixed at construction;
// the payload field that is valid depends on the id. A tag carries a
// name only while it is a keyed child of a compound or the document
// root; list elements are unnamed.
type Tag struct {
	id   TagID
	name string

	// Scalar payloads (one valid based on id)
	byteVal   int8
	shortVal  int16
	intVal    int32
	longVal   int64
	floatVal  float32
	doubleVal float64
	strVal    string

	// Array payloads
	byteArr []byte
	intArr  []int32
	longArr []int64

	// Container payloads
	elemID  TagID  // list element kind; TagEnd while the list is empty and untyped
	listVal []*Tag // list elements, unnamed
	compVal []*Tag // compound children, named, insertion order

	// Extension payload for registered ids above the built-in range
	extVal any

	// Source location when materialized from text
	pos Position
}

// ============================================================
// Constructors
// ============================================================

// Byte creates a byte tag.
func Byte(v int8) *Tag {
	return &Tag{id: TagByte, byteVal: v}
}

// Short creates a short tag.
func Short(v int16) *Tag {
	return &Tag{id: TagShort, shortVal: v}
}

// Int creates an int tag.
func Int(v int32) *Tag {
	return &Tag{id: TagInt, intVal: v}
}

// Long creates a long tag.
func Long(v int64) *Tag {
	return &Tag{id: TagLong, longVal: v}
}

// Float creates a float tag.
func Float(v float32) *Tag {
	return &Tag{id: TagFloat, floatVal: v}
}

// Double creates a double tag.
func Double(v float64) *Tag {
	return &Tag{id: TagDouble, doubleVal: v}
}

// String creates a string tag.
func String(v string) *Tag {
	return &Tag{id: TagString, strVal: v}
}

// ByteArray creates a byte array tag.
func ByteArray(v []byte) *Tag {
	return &Tag{id: TagByteArray, byteArr: v}
}

// IntArray creates an int array tag.
func IntArray(v []int32) *Tag {
	return &Tag{id: TagIntArray, intArr: v}
}

// LongArray creates a long array tag.
func LongArray(v []int64) *Tag {
	return &Tag{id: TagLongArray, longArr: v}
}

// List creates an empty list with the given element kind. Use TagEnd
// for a list whose element kind is fixed by the first Append.
func List(elem TagID) *Tag {
	return &Tag{id: TagList, elemID: elem}
}

// Compound creates an empty compound.
func Compound() *Tag {
	return &Tag{id: TagCompound}
}

// Extension creates a tag with a registered extension id carrying an
// opaque payload. The id's behavior bundle governs its encoding.
func Extension(id TagID, payload any) *Tag {
	return &Tag{id: id, extVal: payload}
}

// ============================================================
// Accessors
// ============================================================

// ID returns the tag kind.
func (t *Tag) ID() TagID {
	if t == nil {
		return TagEnd
	}
	return t.id
}

// Name returns the tag name. Empty for list elements and unnamed roots.
func (t *Tag) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// WithName sets the tag name and returns the tag. Intended for
// document roots; compound children are named by Put.
func (t *Tag) WithName(name string) *Tag {
	t.name = name
	return t
}

// AsByte returns the byte payload.
func (t *Tag) AsByte() (int8, error) {
	if t == nil {
		return 0, fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagByte {
		return 0, fmt.Errorf("nbt: expected byte, got %s", t.id)
	}
	return t.byteVal, nil
}

// AsShort returns the short payload.
func (t *Tag) AsShort() (int16, error) {
	if t == nil {
		return 0, fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagShort {
		return 0, fmt.Errorf("nbt: expected short, got %s", t.id)
	}
	return t.shortVal, nil
}

// AsInt returns the int payload.
func (t *Tag) AsInt() (int32, error) {
	if t == nil {
		return 0, fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagInt {
		return 0, fmt.Errorf("nbt: expected int, got %s", t.id)
	}
	return t.intVal, nil
}

// AsLong returns the long payload.
func (t *Tag) AsLong() (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagLong {
		return 0, fmt.Errorf("nbt: expected long, got %s", t.id)
	}
	return t.longVal, nil
}

// AsFloat returns the float payload.
func (t *Tag) AsFloat() (float32, error) {
	if t == nil {
		return 0, fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagFloat {
		return 0, fmt.Errorf("nbt: expected float, got %s", t.id)
	}
	return t.floatVal, nil
}

// AsDouble returns the double payload.
func (t *Tag) AsDouble() (float64, error) {
	if t == nil {
		return 0, fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagDouble {
		return 0, fmt.Errorf("nbt: expected double, got %s", t.id)
	}
	return t.doubleVal, nil
}

// AsString returns the string payload.
func (t *Tag) AsString() (string, error) {
	if t == nil {
		return "", fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagString {
		return "", fmt.Errorf("nbt: expected string, got %s", t.id)
	}
	return t.strVal, nil
}

// AsByteArray returns the byte array payload.
func (t *Tag) AsByteArray() ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagByteArray {
		return nil, fmt.Errorf("nbt: expected byte_array, got %s", t.id)
	}
	return t.byteArr, nil
}

// AsIntArray returns the int array payload.
func (t *Tag) AsIntArray() ([]int32, error) {
	if t == nil {
		return nil, fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagIntArray {
		return nil, fmt.Errorf("nbt: expected int_array, got %s", t.id)
	}
	return t.intArr, nil
}

// AsLongArray returns the long array payload.
func (t *Tag) AsLongArray() ([]int64, error) {
	if t == nil {
		return nil, fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagLongArray {
		return nil, fmt.Errorf("nbt: expected long_array, got %s", t.id)
	}
	return t.longArr, nil
}

// AsExtension returns the opaque payload of an extension tag.
func (t *Tag) AsExtension() (any, error) {
	if t == nil {
		return nil, fmt.Errorf("nbt: nil tag")
	}
	if t.id <= TagLongArray {
		return nil, fmt.Errorf("nbt: expected extension, got %s", t.id)
	}
	return t.extVal, nil
}

// ElemID returns the element kind of a list. TagEnd for an empty list
// whose element kind was never fixed.
func (t *Tag) ElemID() TagID {
	if t == nil || t.id != TagList {
		return TagEnd
	}
	return t.elemID
}

// Elems returns the elements of a list.
func (t *Tag) Elems() ([]*Tag, error) {
	if t == nil {
		return nil, fmt.Errorf("nbt: nil tag")
	}
	if t.id != TagList {
		return nil, fmt.Errorf("nbt: expected list, got %s", t.id)
	}
	return t.listVal, nil
}

// Len returns the length of a list, compound, or array payload.
func (t *Tag) Len() int {
	if t == nil {
		return 0
	}
	switch t.id {
	case TagList:
		return len(t.listVal)
	case TagCompound:
		return len(t.compVal)
	case TagByteArray:
		return len(t.byteArr)
	case TagIntArray:
		return len(t.intArr)
	case TagLongArray:
		return len(t.longArr)
	default:
		return 0
	}
}

// Get returns a compound child by key, or nil if absent.
func (t *Tag) Get(key string) *Tag {
	if t == nil || t.id != TagCompound {
		return nil
	}
	for _, c := range t.compVal {
		if c.name == key {
			return c
		}
	}
	return nil
}

// Index returns the i-th element of a list.
func (t *Tag) Index(i int) (*Tag, error) {
	if t == nil || t.id != TagList {
		return nil, fmt.Errorf("nbt: not a list")
	}
	if i < 0 || i >= len(t.listVal) {
		return nil, fmt.Errorf("nbt: index %d out of bounds (len=%d)", i, len(t.listVal))
	}
	return t.listVal[i], nil
}

// Keys returns the compound child names in insertion order.
func (t *Tag) Keys() []string {
	if t == nil || t.id != TagCompound {
		return nil
	}
	keys := make([]string, len(t.compVal))
	for i, c := range t.compVal {
		keys[i] = c.name
	}
	return keys
}

// Pos returns the source position of a tag materialized from text.
func (t *Tag) Pos() Position {
	if t == nil {
		return Position{}
	}
	return t.pos
}

// ============================================================
// Mutators
// ============================================================

// Put sets a compound child. An existing key is overwritten in place,
// preserving its original position; a new key is appended. Returns the
// compound for chaining.
func (t *Tag) Put(key string, child *Tag) *Tag {
	if t.id != TagCompound {
		panic("nbt: cannot put on non-compound")
	}
	child.name = key
	for i := range t.compVal {
		if t.compVal[i].name == key {
			t.compVal[i] = child
			return t
		}
	}
	t.compVal = append(t.compVal, child)
	return t
}

// Remove deletes a compound child by key. Reports whether it existed.
func (t *Tag) Remove(key string) bool {
	if t == nil || t.id != TagCompound {
		return false
	}
	for i := range t.compVal {
		if t.compVal[i].name == key {
			t.compVal = append(t.compVal[:i], t.compVal[i+1:]...)
			return true
		}
	}
	return false
}

// Append adds elements to a list. Every element must match the list's
// element kind; appending to an empty TagEnd-typed list fixes the kind
// to that of the first element. Element names are cleared.
func (t *Tag) Append(elems ...*Tag) error {
	if t.id != TagList {
		panic("nbt: cannot append to non-list")
	}
	for _, e := range elems {
		if e == nil {
			return fmt.Errorf("nbt: cannot append nil element")
		}
		if e.id == TagEnd {
			return fmt.Errorf("nbt: cannot append end tag to list")
		}
		if t.elemID == TagEnd && len(t.listVal) == 0 {
			t.elemID = e.id
		}
		if e.id != t.elemID {
			return fmt.Errorf("nbt: list element type mismatch: list of %s, element %s", t.elemID, e.id)
		}
		e.name = ""
		t.listVal = append(t.listVal, e)
	}
	return nil
}

// ============================================================
// Equality
// ============================================================

// Equal reports deep structural equality: same kinds, names, ordering,
// and payload values. Two empty lists are equal regardless of their
// declared element kind, so trees compare equal across codec paths
// that cannot carry the declared kind of an empty list.
func (t *Tag) Equal(o *Tag) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.id != o.id || t.name != o.name {
		return false
	}
	switch t.id {
	case TagByte:
		return t.byteVal == o.byteVal
	case TagShort:
		return t.shortVal == o.shortVal
	case TagInt:
		return t.intVal == o.intVal
	case TagLong:
		return t.longVal == o.longVal
	case TagFloat:
		return equalFloat32(t.floatVal, o.floatVal)
	case TagDouble:
		return equalFloat64(t.doubleVal, o.doubleVal)
	case TagString:
		return t.strVal == o.strVal
	case TagByteArray:
		if len(t.byteArr) != len(o.byteArr) {
			return false
		}
		for i := range t.byteArr {
			if t.byteArr[i] != o.byteArr[i] {
				return false
			}
		}
		return true
	case TagIntArray:
		if len(t.intArr) != len(o.intArr) {
			return false
		}
		for i := range t.intArr {
			if t.intArr[i] != o.intArr[i] {
				return false
			}
		}
		return true
	case TagLongArray:
		if len(t.longArr) != len(o.longArr) {
			return false
		}
		for i := range t.longArr {
			if t.longArr[i] != o.longArr[i] {
				return false
			}
		}
		return true
	case TagList:
		if len(t.listVal) != len(o.listVal) {
			return false
		}
		if len(t.listVal) > 0 && t.elemID != o.elemID {
			return false
		}
		for i := range t.listVal {
			if !t.listVal[i].Equal(o.listVal[i]) {
				return false
			}
		}
		return true
	case TagCompound:
		if len(t.compVal) != len(o.compVal) {
			return false
		}
		for i := range t.compVal {
			if !t.compVal[i].Equal(o.compVal[i]) {
				return false
			}
		}
		return true
	default:
		return t.extVal == o.extVal
	}
}

// equalFloat32 compares bit patterns so that NaN equals NaN and
// negative zero stays distinct from zero.
func equalFloat32(a, b float32) bool {
	if math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
		return true
	}
	return math.Float32bits(a) == math.Float32bits(b)
}

func equalFloat64(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Float64bits(a) == math.Float64bits(b)
}

// String returns the compact textual form of the tag. Errors (an
// unregistered extension id, nesting past the depth ceiling) surface
// inline rather than aborting.
func (t *Tag) String() string {
	s, err := EmitSNBT(t)
	if err != nil {
		return fmt.Sprintf("<nbt:%s:%v>", t.ID(), err)
	}
	return s
}
