package nbt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EmitOptions controls textual rendering. The zero value produces the
// compact single-line form.
type EmitOptions struct {
	// Pretty renders containers across multiple lines.
	Pretty bool
	// Indent is the per-level indent for pretty output. Empty means
	// two spaces.
	Indent string
	// QuoteAllKeys quotes every compound key, even plain ones.
	QuoteAllKeys bool
}

// emitter renders a tag tree into a strings.Builder. Containers share
// the same nesting ceiling the binary codec enforces.
type emitter struct {
	sb       strings.Builder
	opts     EmitOptions
	registry *TypeRegistry
	maxDepth int
	depth    int
}

func emitSNBT(t *Tag, opts EmitOptions, reg *TypeRegistry, maxDepth int) (string, error) {
	if t == nil {
		return "", fmt.Errorf("nbt: cannot render nil tag")
	}
	if reg == nil {
		reg = defaultRegistry
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	e := &emitter{opts: opts, registry: reg, maxDepth: maxDepth}
	if err := e.value(t); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

func (e *emitter) enter() error {
	e.depth++
	if e.depth > e.maxDepth {
		return fmt.Errorf("%w: depth %d exceeds %d", ErrNestingTooDeep, e.depth, e.maxDepth)
	}
	return nil
}

func (e *emitter) leave() {
	e.depth--
}

func (e *emitter) indent() string {
	if e.opts.Indent == "" {
		return "  "
	}
	return e.opts.Indent
}

func (e *emitter) newline() {
	e.sb.WriteByte('\n')
	for i := 0; i < e.depth; i++ {
		e.sb.WriteString(e.indent())
	}
}

func (e *emitter) value(t *Tag) error {
	switch t.id {
	case TagEnd:
		return fmt.Errorf("nbt: cannot render end tag")
	case TagByte:
		e.sb.WriteString(strconv.FormatInt(int64(t.byteVal), 10))
		e.sb.WriteByte('b')
	case TagShort:
		e.sb.WriteString(strconv.FormatInt(int64(t.shortVal), 10))
		e.sb.WriteByte('s')
	case TagInt:
		e.sb.WriteString(strconv.FormatInt(int64(t.intVal), 10))
	case TagLong:
		e.sb.WriteString(strconv.FormatInt(t.longVal, 10))
		e.sb.WriteByte('l')
	case TagFloat:
		e.sb.WriteString(formatFloat32(t.floatVal))
	case TagDouble:
		e.sb.WriteString(formatFloat64(t.doubleVal))
	case TagString:
		e.quoted(t.strVal)
	case TagByteArray:
		e.sb.WriteString("[B;")
		for i, v := range t.byteArr {
			e.arraySep(i)
			e.sb.WriteString(strconv.FormatInt(int64(int8(v)), 10))
		}
		e.sb.WriteByte(']')
	case TagIntArray:
		e.sb.WriteString("[I;")
		for i, v := range t.intArr {
			e.arraySep(i)
			e.sb.WriteString(strconv.FormatInt(int64(v), 10))
		}
		e.sb.WriteByte(']')
	case TagLongArray:
		e.sb.WriteString("[L;")
		for i, v := range t.longArr {
			e.arraySep(i)
			e.sb.WriteString(strconv.FormatInt(v, 10))
		}
		e.sb.WriteByte(']')
	case TagList:
		return e.list(t)
	case TagCompound:
		return e.compound(t)
	default:
		return e.extension(t)
	}
	return nil
}

// arraySep writes the separator before element i of a typed array.
// Arrays stay on one line even in pretty mode.
func (e *emitter) arraySep(i int) {
	if i > 0 {
		e.sb.WriteByte(',')
	}
	if e.opts.Pretty {
		e.sb.WriteByte(' ')
	}
}

func (e *emitter) list(t *Tag) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()

	if len(t.listVal) == 0 {
		e.sb.WriteString("[]")
		return nil
	}
	e.sb.WriteByte('[')
	for i, el := range t.listVal {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		if e.opts.Pretty {
			e.newline()
		}
		if err := e.value(el); err != nil {
			return err
		}
	}
	if e.opts.Pretty {
		e.depth--
		e.newline()
		e.depth++
	}
	e.sb.WriteByte(']')
	return nil
}

func (e *emitter) compound(t *Tag) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()

	if len(t.compVal) == 0 {
		e.sb.WriteString("{}")
		return nil
	}
	e.sb.WriteByte('{')
	for i, child := range t.compVal {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		if e.opts.Pretty {
			e.newline()
		}
		e.key(child.name)
		e.sb.WriteByte(':')
		if e.opts.Pretty {
			e.sb.WriteByte(' ')
		}
		if err := e.value(child); err != nil {
			return err
		}
	}
	if e.opts.Pretty {
		e.depth--
		e.newline()
		e.depth++
	}
	e.sb.WriteByte('}')
	return nil
}

func (e *emitter) extension(t *Tag) error {
	tt, err := e.registry.Resolve(t.id)
	if err != nil {
		return err
	}
	if tt.Emit == nil {
		return fmt.Errorf("nbt: %s has no text form", t.id)
	}
	s, err := tt.Emit(t)
	if err != nil {
		return err
	}
	e.sb.WriteString(s)
	return nil
}

// key writes a compound key, bare when the charset allows it.
func (e *emitter) key(k string) {
	if !e.opts.QuoteAllKeys && isPlainIdent(k) {
		e.sb.WriteString(k)
		return
	}
	e.quoted(k)
}

// quoted writes s double-quoted, escaping only the quote and the
// backslash. Everything else passes through verbatim.
func (e *emitter) quoted(s string) {
	e.sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			e.sb.WriteByte('\\')
		}
		e.sb.WriteByte(s[i])
	}
	e.sb.WriteByte('"')
}

func formatFloat32(v float32) string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "NaNf"
	case math.IsInf(f, 1):
		return "Inff"
	case math.IsInf(f, -1):
		return "-Inff"
	}
	return strconv.FormatFloat(f, 'g', -1, 32) + "f"
}

// formatFloat64 renders a double so it reads back as one: integral
// values keep a trailing ".0" since a bare integer would reparse as a
// 32-bit int.
func formatFloat64(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
