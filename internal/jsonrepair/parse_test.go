package jsonrepair

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"no tag", "```\n[1,2]\n```", `[1,2]`},
		{"other tag", "```javascript\n{\"a\":1}```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{}\n```\n ", `{}`},
		{"unfenced", `  {"a":1} `, `{"a":1}`},
		{"missing close", "```json\n[{\"a\":1}", `[{"a":1}`},
		{"single line", "```{\"a\":1}```", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFence(tc.input); got != tc.want {
				t.Fatalf("StripCodeFence(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestTruncateLongDecimals(t *testing.T) {
	cases := map[string]string{
		`{"score":0.12345678901234567}`:   `{"score":0.1234567890}`,
		`{"score":0.1234567890}`:          `{"score":0.1234567890}`,
		`{"score":-12.00000000000000001}`: `{"score":-12.0000000000}`,
		`[1.5, 2.25]`:                     `[1.5, 2.25]`,
	}
	for input, want := range cases {
		if got := TruncateLongDecimals(input); got != want {
			t.Fatalf("TruncateLongDecimals(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRepairTruncatedArray(t *testing.T) {
	got, ok := RepairTruncatedArray(`[{"text":"a"},{"text":"b"},{"text":"c"`)
	if !ok {
		t.Fatal("expected repair to apply")
	}
	if got != `[{"text":"a"},{"text":"b"}]` {
		t.Fatalf("unexpected repair %q", got)
	}
	if _, ok := RepairTruncatedArray(`["a","b"`); ok {
		t.Fatal("expected no repair without a closing brace")
	}
}

func TestParseRecoversTruncatedArray(t *testing.T) {
	value, err := Parse(`[{"text":"a"},{"text":"b"},{"text":"c"`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	items, ok := value.Array()
	if !ok || len(items) != 2 {
		t.Fatalf("expected two items, got %s", mustJSON(t, value))
	}
	if text, _ := items[1].StringField("text"); text != "b" {
		t.Fatalf("expected last surviving item to be b, got %q", text)
	}
}

func TestParseRecoversFencedTruncatedArray(t *testing.T) {
	value, err := Parse("```json\n[{\"text\":\"a\"},{\"te")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := mustJSON(t, value); got != `[{"text":"a"}]` {
		t.Fatalf("unexpected value %s", got)
	}
}

func TestParseReturnsOriginalErrorWhenRepairFails(t *testing.T) {
	_, err := Parse(`[{"a":{"b":1}`)
	if err == nil {
		t.Fatal("expected error")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected underlying syntax error, got %v", parseErr.Err)
	}
	if !strings.Contains(err.Error(), "payload snippet") {
		t.Fatalf("expected snippet in error, got %q", err.Error())
	}
}

func TestParseRejectsObjectsWithoutRepair(t *testing.T) {
	if _, err := Parse(`{"a":1,"b":{"c":2}`); err == nil {
		t.Fatal("expected truncated object to fail")
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse("  ```json\n```  ")
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestParseIsIdempotentOnValidJSON(t *testing.T) {
	inputs := []string{
		`{"hookType":"Question","keyThemes":["a","b"],"sentimentArc":[{"time":0,"score":0.5}]}`,
		`[{"id":"1","title":"t"}]`,
		`"plain"`,
		`null`,
	}
	for _, input := range inputs {
		once, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		twice, err := Parse(mustJSON(t, once))
		if err != nil {
			t.Fatalf("second Parse(%q): %v", input, err)
		}
		if mustJSON(t, once) != mustJSON(t, twice) {
			t.Fatalf("expected idempotent parse, got %s then %s", mustJSON(t, once), mustJSON(t, twice))
		}
	}
}

func TestParsePreservesKeyOrder(t *testing.T) {
	value, err := Parse(`{"zeta":1,"ideas":[{"id":"x"}],"alpha":[1]}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	key, items, ok := value.FirstArrayField()
	if !ok || key != "ideas" || len(items) != 1 {
		t.Fatalf("expected first array field ideas, got %q %v %v", key, items, ok)
	}
	if got := mustJSON(t, value); got != `{"zeta":1,"ideas":[{"id":"x"}],"alpha":[1]}` {
		t.Fatalf("expected document order to survive, got %s", got)
	}
}

func TestDuplicateKeysKeepFirstPositionLastValue(t *testing.T) {
	value, err := Parse(`{"a":1,"b":2,"a":[3]}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	key, _, ok := value.FirstArrayField()
	if !ok || key != "a" {
		t.Fatalf("expected a to be first array field, got %q", key)
	}
	if got := mustJSON(t, value); got != `{"a":[3],"b":2}` {
		t.Fatalf("unexpected value %s", got)
	}
}

func TestDecodeIntoStruct(t *testing.T) {
	var out struct {
		PersonaName string  `json:"personaName"`
		Score       float64 `json:"score"`
	}
	raw := "```json\n{\"personaName\":\"The Explainer\",\"score\":0.333333333333333333}\n```"
	if err := Decode(raw, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.PersonaName != "The Explainer" {
		t.Fatalf("unexpected persona %q", out.PersonaName)
	}
	if out.Score != 0.3333333333 {
		t.Fatalf("expected truncated score, got %v", out.Score)
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("  "); got != "<empty>" {
		t.Fatalf("unexpected empty snippet %q", got)
	}
	if got := Snippet("a\n\tb"); got != "a b" {
		t.Fatalf("unexpected snippet %q", got)
	}
	long := strings.Repeat("x", 200)
	if got := Snippet(long); len([]rune(got)) != 163 {
		t.Fatalf("expected bounded snippet, got %d runes", len([]rune(got)))
	}
}

func mustJSON(t *testing.T, v Value) string {
	t.Helper()
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}
