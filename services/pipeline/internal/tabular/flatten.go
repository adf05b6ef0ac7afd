package tabular

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/buger/jsonparser"
)

var errInvalidJSON = errors.New("flatten: invalid JSON")

// Flatten turns one JSON record into a Row. Nested objects contribute
// dot-joined keys ("score.winner"); arrays are kept whole as a compact JSON
// string ("[1, 2]"); scalars are stored as-is. A root that is not an object
// produces an empty row.
func Flatten(data []byte) (Row, error) {
	if !json.Valid(data) {
		return Row{}, errInvalidJSON
	}
	_, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return Row{}, fmt.Errorf("flatten: %w", err)
	}

	var row Row
	if typ != jsonparser.Object {
		return row, nil
	}
	if err := flattenObject(&row, "", data); err != nil {
		return Row{}, fmt.Errorf("flatten: %w", err)
	}
	return row, nil
}

// FlattenAll flattens every record, failing on the first malformed one.
func FlattenAll(records []json.RawMessage) ([]Row, error) {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row, err := Flatten(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func flattenObject(row *Row, prefix string, data []byte) error {
	return jsonparser.ObjectEach(data, func(key, value []byte, typ jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		switch typ {
		case jsonparser.Object:
			return flattenObject(row, name, value)
		case jsonparser.Array:
			var sb strings.Builder
			if err := encodeCompact(&sb, value, typ); err != nil {
				return err
			}
			emit(row, name, String(sb.String()))
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return err
			}
			emit(row, name, String(s))
		case jsonparser.Number:
			emit(row, name, Number(string(value)))
		case jsonparser.Boolean:
			b, err := jsonparser.ParseBoolean(value)
			if err != nil {
				return err
			}
			emit(row, name, Bool(b))
		case jsonparser.Null:
			emit(row, name, Null())
		}
		return nil
	})
}

// emit drops values that would land under an empty key.
func emit(row *Row, key string, v Value) {
	if key == "" {
		return
	}
	row.Set(key, v)
}

// encodeCompact re-serializes a JSON value with ", " and ": " separators and
// without escaping non-ASCII text, so "[1,2]" becomes "[1, 2]".
func encodeCompact(sb *strings.Builder, value []byte, typ jsonparser.ValueType) error {
	switch typ {
	case jsonparser.Array:
		sb.WriteByte('[')
		first := true
		var innerErr error
		_, err := jsonparser.ArrayEach(value, func(elem []byte, elemType jsonparser.ValueType, _ int, _ error) {
			if innerErr != nil {
				return
			}
			if !first {
				sb.WriteString(", ")
			}
			first = false
			innerErr = encodeCompact(sb, elem, elemType)
		})
		if err != nil {
			return err
		}
		if innerErr != nil {
			return innerErr
		}
		sb.WriteByte(']')
	case jsonparser.Object:
		sb.WriteByte('{')
		first := true
		err := jsonparser.ObjectEach(value, func(key, elem []byte, elemType jsonparser.ValueType, _ int) error {
			k, err := jsonparser.ParseString(key)
			if err != nil {
				return err
			}
			if !first {
				sb.WriteString(", ")
			}
			first = false
			writeQuoted(sb, k)
			sb.WriteString(": ")
			return encodeCompact(sb, elem, elemType)
		})
		if err != nil {
			return err
		}
		sb.WriteByte('}')
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return err
		}
		writeQuoted(sb, s)
	case jsonparser.Number, jsonparser.Boolean:
		sb.Write(value)
	case jsonparser.Null:
		sb.WriteString("null")
	default:
		return fmt.Errorf("unexpected JSON value %q", value)
	}
	return nil
}

func writeQuoted(sb *strings.Builder, s string) {
	const hex = "0123456789abcdef"
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			sb.WriteRune(r)
			i += size
			continue
		}
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hex[c>>4])
				sb.WriteByte(hex[c&0xF])
			} else {
				sb.WriteByte(c)
			}
		}
		i++
	}
	sb.WriteByte('"')
}
