package nbt

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// ============================================================
// JSON Bridge Tests
// ============================================================

func TestToJSON_Golden(t *testing.T) {
	posList := List(TagEnd)
	require.NoError(t, posList.Append(Double(1.5), Double(-2.5)))

	root := Compound()
	root.Put("z", Int(1))
	root.Put("name", String("stone"))
	root.Put("pos", posList)
	root.Put("data", ByteArray([]byte{1, 255}))
	inner := Compound()
	inner.Put("b", Byte(1))
	inner.Put("a", Byte(0))
	root.Put("inner", inner)

	got, err := ToJSON(root)
	require.NoError(t, err)

	expected := `{"z":1,"name":"stone","pos":[1.5,-2.5],"data":[1,-1],"inner":{"b":1,"a":0}}`
	require.Equal(t, expected, string(got))
}

func TestToJSON_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		tag      *Tag
		expected string
	}{
		{"byte", Byte(-1), "-1"},
		{"short", Short(300), "300"},
		{"int", Int(42), "42"},
		{"long", Long(math.MaxInt64), "9223372036854775807"},
		{"float", Float(1.5), "1.5"},
		{"double", Double(2.5), "2.5"},
		{"string", String(`say "hi"`), `"say \"hi\""`},
		{"int array", IntArray([]int32{-1, 0, 1}), "[-1,0,1]"},
		{"long array", LongArray([]int64{5}), "[5]"},
		{"empty compound", Compound(), "{}"},
		{"empty list", List(TagEnd), "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToJSON(tt.tag)
			require.NoError(t, err)
			require.Equal(t, tt.expected, string(got))
		})
	}
}

func TestToJSON_Errors(t *testing.T) {
	_, err := ToJSON(nil)
	require.Error(t, err)

	// Non-finite floats have no JSON number form.
	_, err = ToJSON(Double(math.NaN()))
	require.Error(t, err)
	_, err = ToJSON(Float(float32(math.Inf(1))))
	require.Error(t, err)

	_, err = ToJSON(Extension(TagID(64), "x"))
	require.Error(t, err)
}

func TestFromJSON_Widening(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *Tag
	}{
		{"small int", "42", Int(42)},
		{"negative int", "-42", Int(-42)},
		{"int32 max", "2147483647", Int(math.MaxInt32)},
		{"past int32 widens", "2147483648", Long(2147483648)},
		{"past int32 negative", "-2147483649", Long(-2147483649)},
		{"fraction", "1.5", Double(1.5)},
		{"integral with point", "42.0", Double(42)},
		{"exponent", "1e3", Double(1000)},
		{"past int64 becomes double", "18446744073709551615", Double(1.8446744073709552e19)},
		{"true", "true", Byte(1)},
		{"false", "false", Byte(0)},
		{"string", `"stone"`, String("stone")},
		{"empty object", "{}", Compound()},
		{"empty array", "[]", List(TagEnd)},
		{"int array", "[1,2,3]", IntArray([]int32{1, 2, 3})},
		{"long array", "[1,3000000000]", LongArray([]int64{1, 3000000000})},
		{"string list", `["a","b"]`, stringList("a", "b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromJSON([]byte(tt.input))
			require.NoError(t, err)
			require.True(t, got.Equal(tt.expected),
				"expected %v (%s), got %v (%s)", tt.expected, tt.expected.ID(), got, got.ID())
		})
	}
}

func stringList(vals ...string) *Tag {
	l := List(TagEnd)
	for _, v := range vals {
		if err := l.Append(String(v)); err != nil {
			panic(err)
		}
	}
	return l
}

func TestFromJSON_NumericArrayWithFraction(t *testing.T) {
	got, err := FromJSON([]byte("[1,2.5,3000000000]"))
	require.NoError(t, err)
	require.Equal(t, TagList, got.ID())
	require.Equal(t, TagDouble, got.ElemID())

	want := []float64{1, 2.5, 3000000000}
	require.Equal(t, len(want), got.Len())
	for i, w := range want {
		el, err := got.Index(i)
		require.NoError(t, err)
		v, err := el.AsDouble()
		require.NoError(t, err)
		require.Equal(t, w, v)
	}
}

func TestFromJSON_PreservesObjectOrder(t *testing.T) {
	got, err := FromJSON([]byte(`{"z":1,"m":{"b":2,"a":3},"a":4}`))
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"z", "m", "a"}, got.Keys()); diff != "" {
		t.Errorf("Key order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "a"}, got.Get("m").Keys()); diff != "" {
		t.Errorf("Nested key order mismatch (-want +got):\n%s", diff)
	}
}

func TestFromJSON_HomogeneousLists(t *testing.T) {
	got, err := FromJSON([]byte(`[[1,2],[3]]`))
	require.NoError(t, err)
	require.Equal(t, TagIntArray, got.ElemID())

	got, err = FromJSON([]byte(`[{"a":1},{}]`))
	require.NoError(t, err)
	require.Equal(t, TagCompound, got.ElemID())

	got, err = FromJSON([]byte(`[true,false]`))
	require.NoError(t, err)
	require.Equal(t, TagByte, got.ElemID())
}

func TestFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"null", "null"},
		{"null in object", `{"a":null}`},
		{"mixed array", `[1,"a"]`},
		{"mixed nested array", `[[1],"a"]`},
		{"trailing document", "{} {}"},
		{"malformed", "{"},
		{"garbage", "not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.input))
			require.Error(t, err)
		})
	}
}

func TestJSON_RoundTripFixpoints(t *testing.T) {
	// Kinds that survive the widening policy unchanged.
	root := Compound()
	root.Put("count", Int(3))
	root.Put("big", Long(5000000000))
	root.Put("ratio", Double(2.5))
	root.Put("name", String("villager"))
	root.Put("ints", IntArray([]int32{1, 2}))
	root.Put("longs", LongArray([]int64{1, 5000000000}))
	inner := Compound()
	inner.Put("nested", String("yes"))
	root.Put("inner", inner)

	data, err := ToJSON(root)
	require.NoError(t, err)
	got, err := FromJSON(data)
	require.NoError(t, err)
	require.True(t, root.Equal(got), "expected %v, got %v", root, got)
}

// ============================================================
// YAML Bridge Tests
// ============================================================

func TestToYAML_Golden(t *testing.T) {
	root := Compound()
	root.Put("name", String("stone"))
	root.Put("count", Int(3))

	got, err := ToYAML(root)
	require.NoError(t, err)
	require.Equal(t, "name: stone\ncount: 3\n", string(got))
}

func TestToYAML_Errors(t *testing.T) {
	_, err := ToYAML(nil)
	require.Error(t, err)
	_, err = ToYAML(Extension(TagID(64), "x"))
	require.Error(t, err)
}

func TestFromYAML_Widening(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *Tag
	}{
		{"int", "42", Int(42)},
		{"negative", "-42", Int(-42)},
		{"long", "5000000000", Long(5000000000)},
		{"double", "1.5", Double(1.5)},
		{"bool", "true", Byte(1)},
		{"string", "stone", String("stone")},
		{"quoted string", `"42"`, String("42")},
		{"int sequence", "- 1\n- 2\n", IntArray([]int32{1, 2})},
		{"long sequence", "- 1\n- 5000000000\n", LongArray([]int64{1, 5000000000})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromYAML([]byte(tt.input))
			require.NoError(t, err)
			require.True(t, got.Equal(tt.expected),
				"expected %v (%s), got %v (%s)", tt.expected, tt.expected.ID(), got, got.ID())
		})
	}
}

func TestFromYAML_PreservesMappingOrder(t *testing.T) {
	got, err := FromYAML([]byte("z: 1\nm: 2\na: 3\n"))
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"z", "m", "a"}, got.Keys()); diff != "" {
		t.Errorf("Key order mismatch (-want +got):\n%s", diff)
	}
}

func TestFromYAML_Errors(t *testing.T) {
	_, err := FromYAML([]byte("a: null\n"))
	require.Error(t, err)

	_, err = FromYAML([]byte("1: x\n"))
	require.Error(t, err, "non-string keys have no compound form")

	_, err = FromYAML([]byte("- 1\n- a\n"))
	require.Error(t, err, "mixed sequences have no tag form")
}

func TestYAML_RoundTripFixpoints(t *testing.T) {
	root := Compound()
	root.Put("count", Int(3))
	root.Put("big", Long(5000000000))
	root.Put("ratio", Double(2.5))
	root.Put("name", String("villager"))
	root.Put("ints", IntArray([]int32{1, 2}))
	inner := Compound()
	inner.Put("nested", String("yes"))
	root.Put("inner", inner)

	data, err := ToYAML(root)
	require.NoError(t, err)
	got, err := FromYAML(data)
	require.NoError(t, err)
	require.True(t, root.Equal(got), "expected %v, got %v\nyaml:\n%s", root, got, data)
}
