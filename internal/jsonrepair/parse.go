package jsonrepair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty reports that there was nothing left to parse after cleaning.
var ErrEmpty = errors.New("empty payload")

// ParseError is returned when the cleaned text is not valid JSON and could
// not be repaired. Err is the strict parse failure of the cleaned text.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v (payload snippet: %s)", e.Err, Snippet(e.Raw))
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse cleans raw model text and parses it strictly. When that fails and the
// cleaned text opens an array, the array is cut after its last complete
// object and parsed again. If the repair fails too, the original failure is
// returned.
func Parse(raw string) (Value, error) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return Value{}, &ParseError{Raw: raw, Err: ErrEmpty}
	}
	value, err := parseStrict(cleaned)
	if err == nil {
		return value, nil
	}
	if strings.HasPrefix(cleaned, "[") {
		if repaired, ok := RepairTruncatedArray(cleaned); ok {
			if value, repairErr := parseStrict(repaired); repairErr == nil {
				return value, nil
			}
		}
	}
	return Value{}, &ParseError{Raw: raw, Err: err}
}

// Decode runs Parse and unmarshals the result into target.
func Decode(raw string, target any) error {
	value, err := Parse(raw)
	if err != nil {
		return err
	}
	encoded, err := value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("re-encode model output: %w", err)
	}
	if err := json.Unmarshal(encoded, target); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}

func parseStrict(text string) (Value, error) {
	// Validate first so callers get encoding/json's positional errors and
	// trailing data is rejected.
	var probe any
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return Value{}, err
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	return decodeValue(dec)
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return Value{kind: KindNumber, number: t}, nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return ArrayValue(items...), nil
		case '{':
			obj := ObjectValue()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.set(key, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return obj, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}
