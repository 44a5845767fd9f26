package csl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// NoteKey is the CSL note variable. Repeated notes are joined with a newline
// because CSL items carry a single note.
const NoteKey = "note"

// MarshalJSON encodes the item as a flat CSL-JSON object: "id" first, then
// ordinary fields in arrival order, name fields grouped by key, and date
// fields individually keyed. Empty name and date objects are omitted.
func (it Item) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	emitted := make(map[string]bool)

	b.WriteByte('{')
	first := true
	member := func(key string, value []byte) error {
		k, err := encodeValue(key)
		if err != nil {
			return err
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.Write(k)
		b.WriteByte(':')
		b.Write(value)
		emitted[key] = true
		return nil
	}

	id, err := encodeValue(it.ID)
	if err != nil {
		return nil, err
	}
	if err := member(ReservedIDKey, id); err != nil {
		return nil, err
	}

	for _, key := range ordinaryKeys(it.Fields) {
		if key == ReservedIDKey || emitted[key] {
			continue
		}
		v := it.Values(key)
		value := v[0]
		if key == NoteKey {
			value = strings.Join(v, "\n")
		}
		enc, err := encodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
		if err := member(key, enc); err != nil {
			return nil, err
		}
	}

	for _, key := range nameKeys(it.Names) {
		if key == ReservedIDKey || emitted[key] {
			continue
		}
		var parts []NameParts
		for _, np := range it.NamesFor(key) {
			if !np.IsEmpty() {
				parts = append(parts, np)
			}
		}
		if len(parts) == 0 {
			continue
		}
		enc, err := encodeValue(parts)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
		if err := member(key, enc); err != nil {
			return nil, err
		}
	}

	for _, d := range it.Dates {
		if d.Key == ReservedIDKey || emitted[d.Key] || d.Parts.IsEmpty() {
			continue
		}
		enc, err := encodeValue(d.Parts)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", d.Key, err)
		}
		if err := member(d.Key, enc); err != nil {
			return nil, err
		}
	}

	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON reads the object written by MarshalJSON. Strings become
// ordinary fields, arrays become name fields and objects become date fields.
// The stored id is kept as is.
func (it *Item) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("csl item: expected object")
	}

	var out Item
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("csl item: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("csl item %s: %w", key, err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}

		switch raw[0] {
		case '"':
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("csl item %s: %w", key, err)
			}
			if key == ReservedIDKey {
				out.ID = s
			} else {
				out.Fields = append(out.Fields, Ordinary{Key: key, Value: s})
			}
		case '[':
			var names []NameParts
			if err := json.Unmarshal(raw, &names); err != nil {
				return fmt.Errorf("csl item %s: %w", key, err)
			}
			for _, np := range names {
				n := Name{Key: key, Parts: np}
				n.Full = np.Family != nil && np.Given != nil
				out.Names = append(out.Names, n)
			}
		case '{':
			var dp DateParts
			if err := json.Unmarshal(raw, &dp); err != nil {
				return fmt.Errorf("csl item %s: %w", key, err)
			}
			out.Dates = append(out.Dates, Date{Key: key, Parts: dp})
		case 'n':
			// null
		default:
			// numbers and booleans are kept as their literal text
			if key == ReservedIDKey {
				out.ID = string(raw)
			} else {
				out.Fields = append(out.Fields, Ordinary{Key: key, Value: string(raw)})
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*it = out
	return nil
}

// Encode writes items as a CSL-JSON array.
func Encode(w io.Writer, items []Item, indent bool) error {
	if items == nil {
		items = []Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(items)
}

func encodeValue(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

func ordinaryKeys(fields []Ordinary) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, f := range fields {
		if !seen[f.Key] {
			seen[f.Key] = true
			keys = append(keys, f.Key)
		}
	}
	return keys
}

func nameKeys(names []Name) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, n := range names {
		if !seen[n.Key] {
			seen[n.Key] = true
			keys = append(keys, n.Key)
		}
	}
	return keys
}
