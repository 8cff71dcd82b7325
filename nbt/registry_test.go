package nbt

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// tickType is a sample extension bundle: id 64 carrying an int64 payload.
func tickType() *TagType {
	return &TagType{
		ID:   TagID(64),
		Name: "tick",
		Make: func() *Tag { return Extension(TagID(64), int64(0)) },
		Read: func(r *Reader) (*Tag, error) {
			v, err := r.ReadInt64()
			if err != nil {
				return nil, err
			}
			return Extension(TagID(64), v), nil
		},
		Write: func(w *Writer, t *Tag) error {
			v, err := t.AsExtension()
			if err != nil {
				return err
			}
			n, ok := v.(int64)
			if !ok {
				return fmt.Errorf("nbt: tick payload must be int64, got %T", v)
			}
			return w.WriteInt64(n)
		},
		Emit: func(t *Tag) (string, error) {
			v, err := t.AsExtension()
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("@tick(%d)", v), nil
		},
	}
}

// ============================================================
// Registry Tests
// ============================================================

func TestRegistry_BuiltinsResolve(t *testing.T) {
	reg := NewTypeRegistry()
	for id := TagByte; id <= TagLongArray; id++ {
		tt, err := reg.Resolve(id)
		if err != nil {
			t.Errorf("Resolve(%s) failed: %v", id, err)
			continue
		}
		if tt.ID != id {
			t.Errorf("Expected bundle id %s, got %s", id, tt.ID)
		}
		if tt.Make == nil || tt.Read == nil || tt.Write == nil {
			t.Errorf("Incomplete built-in bundle for %s", id)
		}
	}
}

func TestRegistry_EndNeverResolves(t *testing.T) {
	reg := NewTypeRegistry()
	if _, err := reg.Resolve(TagEnd); !errors.Is(err, ErrUnknownTypeID) {
		t.Errorf("Expected ErrUnknownTypeID for end, got %v", err)
	}
}

func TestRegistry_UnknownID(t *testing.T) {
	reg := NewTypeRegistry()
	if _, err := reg.Resolve(TagID(200)); !errors.Is(err, ErrUnknownTypeID) {
		t.Errorf("Expected ErrUnknownTypeID, got %v", err)
	}
}

func TestRegistry_Register(t *testing.T) {
	reg := NewTypeRegistry()
	if err := reg.Register(tickType()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	tt, err := reg.Resolve(TagID(64))
	if err != nil {
		t.Fatalf("Resolve failed after Register: %v", err)
	}
	if tt.Name != "tick" {
		t.Errorf("Expected name tick, got %q", tt.Name)
	}
}

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	reg := NewTypeRegistry()
	if err := reg.Register(tickType()); err != nil {
		t.Fatalf("First Register failed: %v", err)
	}
	if err := reg.Register(tickType()); !errors.Is(err, ErrDuplicateTypeID) {
		t.Errorf("Expected ErrDuplicateTypeID, got %v", err)
	}

	// Built-in ids are already taken.
	bundle := tickType()
	bundle.ID = TagInt
	if err := reg.Register(bundle); !errors.Is(err, ErrDuplicateTypeID) {
		t.Errorf("Expected ErrDuplicateTypeID for built-in id, got %v", err)
	}
}

func TestRegistry_RegisterRejectsEndID(t *testing.T) {
	reg := NewTypeRegistry()
	bundle := tickType()
	bundle.ID = TagEnd
	if err := reg.Register(bundle); !errors.Is(err, ErrDuplicateTypeID) {
		t.Errorf("Expected ErrDuplicateTypeID for id 0, got %v", err)
	}
}

func TestRegistry_RegisterRejectsIncompleteBundle(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TagType)
	}{
		{"nil make", func(tt *TagType) { tt.Make = nil }},
		{"nil read", func(tt *TagType) { tt.Read = nil }},
		{"nil write", func(tt *TagType) { tt.Write = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewTypeRegistry()
			bundle := tickType()
			tt.mutate(bundle)
			if err := reg.Register(bundle); err == nil {
				t.Error("Expected error for incomplete bundle")
			}
		})
	}
	// A nil Emit is fine; the type simply has no text form.
	reg := NewTypeRegistry()
	bundle := tickType()
	bundle.Emit = nil
	if err := reg.Register(bundle); err != nil {
		t.Errorf("Register with nil Emit failed: %v", err)
	}
}

func TestRegistry_CloneIsolation(t *testing.T) {
	base := NewTypeRegistry()
	clone := base.Clone()
	if err := clone.Register(tickType()); err != nil {
		t.Fatalf("Register on clone failed: %v", err)
	}

	if _, err := clone.Resolve(TagID(64)); err != nil {
		t.Errorf("Clone should resolve id 64: %v", err)
	}
	if _, err := base.Resolve(TagID(64)); !errors.Is(err, ErrUnknownTypeID) {
		t.Errorf("Original must not see the clone's registration, got %v", err)
	}
}

// ============================================================
// Extension Round-Trip Tests
// ============================================================

func TestRegistry_ExtensionRoundTrip(t *testing.T) {
	reg := NewTypeRegistry()
	if err := reg.Register(tickType()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	codec := New(WithRegistry(reg))

	root := Compound().WithName("world")
	root.Put("age", Extension(TagID(64), int64(1234567890)))
	root.Put("label", String("overworld"))

	data, err := codec.Marshal(root)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := codec.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !root.Equal(got) {
		t.Errorf("Round trip mismatch:\n  in:  %v\n  out: %v", root, got)
	}

	age, err := got.Get("age").AsExtension()
	if err != nil {
		t.Fatalf("AsExtension failed: %v", err)
	}
	if age != int64(1234567890) {
		t.Errorf("Expected 1234567890, got %v", age)
	}
}

func TestRegistry_ExtensionUnknownToDefaultCodec(t *testing.T) {
	reg := NewTypeRegistry()
	if err := reg.Register(tickType()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	codec := New(WithRegistry(reg))

	root := Compound()
	root.Put("age", Extension(TagID(64), int64(7)))
	data, err := codec.Marshal(root)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// The default codec has no bundle for id 64.
	if _, err := Unmarshal(data); !errors.Is(err, ErrUnknownTypeID) {
		t.Errorf("Expected ErrUnknownTypeID, got %v", err)
	}
}

func TestRegistry_ExtensionEmit(t *testing.T) {
	reg := NewTypeRegistry()
	if err := reg.Register(tickType()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	codec := New(WithRegistry(reg))

	root := Compound()
	root.Put("age", Extension(TagID(64), int64(42)))
	got, err := codec.EmitSNBT(root)
	if err != nil {
		t.Fatalf("EmitSNBT failed: %v", err)
	}
	if got != "{age:@tick(42)}" {
		t.Errorf("Expected {age:@tick(42)}, got %q", got)
	}
}

func TestRegistry_ExtensionWithoutEmitHasNoTextForm(t *testing.T) {
	reg := NewTypeRegistry()
	bundle := tickType()
	bundle.Emit = nil
	if err := reg.Register(bundle); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	codec := New(WithRegistry(reg))

	root := Compound()
	root.Put("age", Extension(TagID(64), int64(42)))
	if _, err := codec.EmitSNBT(root); err == nil {
		t.Error("Expected error for extension without a text form")
	}
}

func TestRegistry_ExtensionWriteBadPayload(t *testing.T) {
	reg := NewTypeRegistry()
	if err := reg.Register(tickType()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	codec := New(WithRegistry(reg))

	root := Compound()
	root.Put("age", Extension(TagID(64), "not an int64"))
	var buf bytes.Buffer
	if err := codec.Write(&buf, root); err == nil {
		t.Error("Expected error for mismatched extension payload")
	}
}
