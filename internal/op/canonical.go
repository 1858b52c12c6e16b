package op

import (
	"bytes"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces deterministic JSON for storage and golden
// comparison. The same value always serializes to the same bytes:
//
//  1. Object keys are sorted
//  2. Strings are NFC normalized
//  3. No HTML escaping (< > & pass through)
//  4. Floats are rejected (trace values are integers)
//
// Accepted inputs are the op types (Locator, Event, Composite and slices of
// them) plus strings, integers, booleans, []any and map[string]any.
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case string:
		return canonicalString(val), nil
	case Kind:
		return canonicalString(string(val)), nil
	case Action:
		return canonicalString(string(val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return fmt.Appendf(nil, "%d", val), nil
	case int64:
		return fmt.Appendf(nil, "%d", val), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON")
	case Locator:
		return marshalCanonicalObject(locatorMap(val))
	case *Locator:
		if val == nil {
			return []byte("null"), nil
		}
		return marshalCanonicalObject(locatorMap(*val))
	case Event:
		return marshalCanonicalObject(eventMap(val))
	case Composite:
		return marshalCanonicalObject(compositeMap(&val))
	case *Composite:
		if val == nil {
			return []byte("null"), nil
		}
		return marshalCanonicalObject(compositeMap(val))
	case []Locator:
		items := make([]any, len(val))
		for i, l := range val {
			items[i] = l
		}
		return marshalCanonicalArray(items)
	case []Event:
		items := make([]any, len(val))
		for i, e := range val {
			items[i] = e
		}
		return marshalCanonicalArray(items)
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type %T in canonical JSON", v)
	}
}

func locatorMap(l Locator) map[string]any {
	m := map[string]any{"id": l.ID}
	if len(l.Index) > 0 {
		idx := make([]any, len(l.Index))
		for i, v := range l.Index {
			idx[i] = v
		}
		m["index"] = idx
	}
	return m
}

func eventMap(e Event) map[string]any {
	m := map[string]any{
		"action": e.Action,
		"target": e.Target,
		"value":  e.Value,
		"prev":   e.Prev,
		"seq":    e.Seq,
	}
	if e.Source != nil {
		m["source"] = *e.Source
	}
	return m
}

func compositeMap(c *Composite) map[string]any {
	window := make([]any, len(c.Window))
	for i, e := range c.Window {
		window[i] = e
	}
	operands := make([]any, len(c.Operands))
	for i, l := range c.Operands {
		operands[i] = l
	}
	return map[string]any{
		"id":       c.ID,
		"kind":     c.Kind,
		"window":   window,
		"operands": operands,
	}
}

func marshalCanonicalArray(items []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(item)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(canonicalString(k))
		buf.WriteByte(':')
		b, err := MarshalCanonical(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// canonicalString quotes s with minimal escaping and NFC normalization.
// No HTML escaping: deterministic bytes matter more than embedding safety.
func canonicalString(s string) []byte {
	s = norm.NFC.String(s)
	var buf bytes.Buffer
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return buf.Bytes()
}
