package tabular

import (
	"encoding/json"
	"strconv"
	"time"
)

// Kind tags the representation held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber // JSON number literal, kept verbatim
	KindBool
	KindInt
	KindTime
)

// Value is a single table cell.
type Value struct {
	kind Kind
	text string
	b    bool
	i    int64
	t    time.Time
}

func Null() Value                 { return Value{} }
func String(s string) Value       { return Value{kind: KindString, text: s} }
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func Int(i int64) Value           { return Value{kind: KindInt, i: i} }
func Time(t time.Time) Value      { return Value{kind: KindTime, t: t.UTC()} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt returns the integer held by a KindInt value.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsTime returns the timestamp held by a KindTime value.
func (v Value) AsTime() (time.Time, bool) {
	return v.t, v.kind == KindTime
}

// Text is the cell as written to CSV. Null renders as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "<null>"
	}
	return v.Text()
}

// Equal compares kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString, KindNumber:
		return v.text == o.text
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.text)
	case KindNumber:
		return []byte(v.text), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindTime:
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	default:
		return []byte("null"), nil
	}
}
