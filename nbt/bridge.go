package nbt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// The JSON and YAML bridges are boundary conversions, not codecs:
// numeric widths and array kinds do not survive a round trip. The
// binary and textual paths never go through them.

// ToJSON renders a tree as JSON. Compound order is preserved; numeric
// kinds widen to plain JSON numbers; byte arrays become arrays of
// numbers, not base64. Non-finite floats have no JSON form and fail.
func ToJSON(root *Tag) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("nbt: cannot convert nil tag")
	}
	return json.Marshal(jsonTag{root})
}

// jsonTag adapts a tag to json.Marshaler so compounds can keep their
// insertion order through the encoder.
type jsonTag struct {
	t *Tag
}

func (j jsonTag) MarshalJSON() ([]byte, error) {
	t := j.t
	switch t.id {
	case TagByte:
		return json.Marshal(t.byteVal)
	case TagShort:
		return json.Marshal(t.shortVal)
	case TagInt:
		return json.Marshal(t.intVal)
	case TagLong:
		return json.Marshal(t.longVal)
	case TagFloat:
		return json.Marshal(t.floatVal)
	case TagDouble:
		return json.Marshal(t.doubleVal)
	case TagString:
		return json.Marshal(t.strVal)
	case TagByteArray:
		vals := make([]int8, len(t.byteArr))
		for i, b := range t.byteArr {
			vals[i] = int8(b)
		}
		return json.Marshal(vals)
	case TagIntArray:
		return json.Marshal(t.intArr)
	case TagLongArray:
		return json.Marshal(t.longArr)
	case TagList:
		elems := make([]jsonTag, len(t.listVal))
		for i, el := range t.listVal {
			elems[i] = jsonTag{el}
		}
		return json.Marshal(elems)
	case TagCompound:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, child := range t.compVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(child.name)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			v, err := json.Marshal(jsonTag{child})
			if err != nil {
				return nil, err
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("nbt: %s has no JSON form", t.id)
	}
}

// FromJSON builds a tree from JSON. Integral numbers become ints,
// longs when they do not fit 32 bits; fractional or exponent forms
// become doubles; booleans become bytes; null has no tag analogue.
// All-integral arrays become int or long arrays by range, all-numeric
// arrays with a fraction become lists of doubles, and other arrays
// must be of one JSON kind.
func FromJSON(data []byte) (*Tag, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	t, err := fromJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("nbt: json: trailing content after document")
	}
	return t, nil
}

func fromJSONValue(dec *json.Decoder) (*Tag, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("nbt: json: %w", err)
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return fromJSONObject(dec)
		case '[':
			return fromJSONArray(dec)
		default:
			return nil, fmt.Errorf("nbt: json: unexpected %q", v.String())
		}
	case string:
		return String(v), nil
	case bool:
		if v {
			return Byte(1), nil
		}
		return Byte(0), nil
	case json.Number:
		return numberTag(v)
	case nil:
		return nil, fmt.Errorf("nbt: json: null has no tag analogue")
	default:
		return nil, fmt.Errorf("nbt: json: unexpected token %v", tok)
	}
}

func fromJSONObject(dec *json.Decoder) (*Tag, error) {
	c := Compound()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("nbt: json: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("nbt: json: object key %v", keyTok)
		}
		child, err := fromJSONValue(dec)
		if err != nil {
			return nil, err
		}
		c.Put(key, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("nbt: json: %w", err)
	}
	return c, nil
}

func fromJSONArray(dec *json.Decoder) (*Tag, error) {
	var elems []*Tag
	for dec.More() {
		el, err := fromJSONValue(dec)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("nbt: json: %w", err)
	}
	return classifyElems(elems)
}

func numberTag(n json.Number) (*Tag, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if v, err := n.Int64(); err == nil {
			return intTag(v), nil
		}
		// Magnitudes past int64 fall through to the float path.
	}
	v, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return Double(v), nil
}

func intTag(v int64) *Tag {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return Int(int32(v))
	}
	return Long(v)
}

// classifyElems picks the tag for a decoded generic array.
func classifyElems(elems []*Tag) (*Tag, error) {
	if len(elems) == 0 {
		return List(TagEnd), nil
	}
	numeric := true
	hasDouble, hasLong := false, false
	for _, e := range elems {
		switch e.id {
		case TagInt:
		case TagLong:
			hasLong = true
		case TagDouble:
			hasDouble = true
		default:
			numeric = false
		}
	}
	if numeric {
		switch {
		case hasDouble:
			l := List(TagDouble)
			for _, e := range elems {
				if err := l.Append(Double(numAsFloat(e))); err != nil {
					return nil, err
				}
			}
			return l, nil
		case hasLong:
			vals := make([]int64, len(elems))
			for i, e := range elems {
				vals[i] = numAsInt(e)
			}
			return LongArray(vals), nil
		default:
			vals := make([]int32, len(elems))
			for i, e := range elems {
				vals[i] = int32(numAsInt(e))
			}
			return IntArray(vals), nil
		}
	}
	l := List(elems[0].id)
	for _, e := range elems {
		if err := l.Append(e); err != nil {
			return nil, fmt.Errorf("nbt: mixed array has no tag analogue: %s and %s", elems[0].id, e.id)
		}
	}
	return l, nil
}

func numAsFloat(e *Tag) float64 {
	switch e.id {
	case TagInt:
		return float64(e.intVal)
	case TagLong:
		return float64(e.longVal)
	default:
		return e.doubleVal
	}
}

func numAsInt(e *Tag) int64 {
	if e.id == TagLong {
		return e.longVal
	}
	return int64(e.intVal)
}

// ToYAML renders a tree as YAML, preserving compound order.
func ToYAML(root *Tag) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("nbt: cannot convert nil tag")
	}
	v, err := yamlValue(root)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("nbt: yaml: %w", err)
	}
	return out, nil
}

func yamlValue(t *Tag) (any, error) {
	switch t.id {
	case TagByte:
		return t.byteVal, nil
	case TagShort:
		return t.shortVal, nil
	case TagInt:
		return t.intVal, nil
	case TagLong:
		return t.longVal, nil
	case TagFloat:
		return t.floatVal, nil
	case TagDouble:
		return t.doubleVal, nil
	case TagString:
		return t.strVal, nil
	case TagByteArray:
		vals := make([]int8, len(t.byteArr))
		for i, b := range t.byteArr {
			vals[i] = int8(b)
		}
		return vals, nil
	case TagIntArray:
		return t.intArr, nil
	case TagLongArray:
		return t.longArr, nil
	case TagList:
		out := make([]any, len(t.listVal))
		for i, el := range t.listVal {
			v, err := yamlValue(el)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case TagCompound:
		ms := make(yaml.MapSlice, 0, len(t.compVal))
		for _, child := range t.compVal {
			v, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			ms = append(ms, yaml.MapItem{Key: child.name, Value: v})
		}
		return ms, nil
	default:
		return nil, fmt.Errorf("nbt: %s has no YAML form", t.id)
	}
}

// FromYAML builds a tree from YAML with the same widening policy as
// FromJSON. Mappings decode through an ordered representation so
// compound order follows the document.
func FromYAML(data []byte) (*Tag, error) {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("nbt: yaml: %w", err)
	}
	return fromYAMLValue(doc)
}

func fromYAMLValue(v any) (*Tag, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return Byte(1), nil
		}
		return Byte(0), nil
	case string:
		return String(x), nil
	case int:
		return intTag(int64(x)), nil
	case int64:
		return intTag(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows a 64-bit int", ErrInvalidNumber, x)
		}
		return intTag(int64(x)), nil
	case float32:
		return Double(float64(x)), nil
	case float64:
		return Double(x), nil
	case yaml.MapSlice:
		c := Compound()
		for _, item := range x {
			key, ok := item.Key.(string)
			if !ok {
				return nil, fmt.Errorf("nbt: yaml: non-string key %v", item.Key)
			}
			child, err := fromYAMLValue(item.Value)
			if err != nil {
				return nil, err
			}
			c.Put(key, child)
		}
		return c, nil
	case []any:
		elems := make([]*Tag, 0, len(x))
		for _, el := range x {
			t, err := fromYAMLValue(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		return classifyElems(elems)
	case nil:
		return nil, fmt.Errorf("nbt: yaml: null has no tag analogue")
	default:
		return nil, fmt.Errorf("nbt: yaml: %T has no tag analogue", v)
	}
}
