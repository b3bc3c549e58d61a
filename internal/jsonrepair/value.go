package jsonrepair

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies the JSON type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value Value
}

// Value is a parsed JSON value. Objects keep their keys in document order so
// callers can pick "the first array-valued property" deterministically.
type Value struct {
	kind    Kind
	boolean bool
	number  json.Number
	str     string
	items   []Value
	members []Member
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// StringValue wraps a Go string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue wraps a Go bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, boolean: b} }

// ArrayValue wraps a list of values.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

// ObjectValue wraps ordered members. A repeated key keeps its first position
// and takes the later value.
func ObjectValue(members ...Member) Value {
	v := Value{kind: KindObject, members: []Member{}}
	for _, m := range members {
		v.set(m.Key, m.Value)
	}
	return v
}

func (v *Value) set(key string, value Value) {
	for i := range v.members {
		if v.members[i].Key == key {
			v.members[i].Value = value
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: value})
}

func (v Value) Kind() Kind { return v.kind }

// String returns the string payload when v is a JSON string.
func (v Value) String() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Float returns the numeric payload when v is a JSON number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := v.number.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// Array returns the elements when v is a JSON array.
func (v Value) Array() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.items, true
}

// Field looks up a key on an object value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// StringField returns an object's string-valued field.
func (v Value) StringField(key string) (string, bool) {
	field, ok := v.Field(key)
	if !ok {
		return "", false
	}
	return field.String()
}

// ArrayField returns an object's array-valued field.
func (v Value) ArrayField(key string) ([]Value, bool) {
	field, ok := v.Field(key)
	if !ok {
		return nil, false
	}
	return field.Array()
}

// FirstArrayField returns the value of the first array-valued property of an
// object, in document order.
func (v Value) FirstArrayField() (string, []Value, bool) {
	for _, m := range v.members {
		if items, ok := m.Value.Array(); ok {
			return m.Key, items, true
		}
	}
	return "", nil, false
}

// MarshalJSON encodes the value, preserving object key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		buf.WriteString(v.number.String())
	case KindString:
		encoded, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
	return nil
}
