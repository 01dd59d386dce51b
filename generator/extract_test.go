package generator

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLastJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "object surrounded by prose",
			input: `Here is the result: {"title": "A", "sections": []} done`,
			want:  map[string]any{"title": "A", "sections": []any{}},
		},
		{
			name:  "later object wins",
			input: `{"a":1} garbage {"a":2}`,
			want:  map[string]any{"a": json.Number("2")},
		},
		{
			name:  "back to back objects",
			input: `{"a":1}{"b":2}`,
			want:  map[string]any{"b": json.Number("2")},
		},
		{
			name:  "markdown fenced block",
			input: "Sure!\n```json\n{\"title\": \"Fenced\", \"ok\": true}\n```\n",
			want:  map[string]any{"title": "Fenced", "ok": true},
		},
		{
			name:  "nested values are not revisited",
			input: `prefix {"a": {"b": [1, 2]}}`,
			want:  map[string]any{"a": map[string]any{"b": []any{json.Number("1"), json.Number("2")}}},
		},
		{
			name:  "escaped quotes and braces inside strings",
			input: `note {"q": "she said \"hi\" {not json}"}`,
			want:  map[string]any{"q": `she said "hi" {not json}`},
		},
		{
			name:  "bare number",
			input: "the answer is 42",
			want:  json.Number("42"),
		},
		{
			name:  "bare string literal",
			input: `he said "hello" loudly`,
			want:  "hello",
		},
		{
			name:  "literal null",
			input: "value: null",
			want:  nil,
		},
		{
			name:  "truncated trailing object yields its last complete token",
			input: `{"a":1} {"b":`,
			want:  "b",
		},
		{
			name:  "top-level array",
			input: `list: [1, "two", false]`,
			want:  []any{json.Number("1"), "two", false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractLastJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractLastJSON_NoJSON(t *testing.T) {
	for _, input := range []string{
		"",
		"   \n\t  ",
		"no json here",
		"{unquoted: keys}",
		"tru fals nul",
		"{broken",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ExtractLastJSON(input)
			assert.ErrorIs(t, err, ErrNoJSONFound)
		})
	}
}

func TestExtractLastJSON_UnclosedContainers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"deep unclosed nesting", strings.Repeat(`{"a":[`, 4000), "a"},
		{"opener after last closer", `{"a":1} then [ and {`, map[string]any{"a": json.Number("1")}},
		{"closer of other kind only", `[1] {"x": [`, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			got, err := ExtractLastJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Less(t, time.Since(start), time.Second)
		})
	}
}

func TestExtractLastJSON_Idempotent(t *testing.T) {
	inputs := []string{
		`intro {"title": "T", "subtitle": "S", "sections": [{"heading": "H", "content": "C"}], "n": 1.50}`,
		`[1, 2, {"x": null}]`,
		`"just a string"`,
		`12345678901234567890`,
	}
	for _, input := range inputs {
		first, err := ExtractLastJSON(input)
		require.NoError(t, err)

		encoded, err := json.Marshal(first)
		require.NoError(t, err)

		second, err := ExtractLastJSON(string(encoded))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestCanStartValue(t *testing.T) {
	for _, c := range []byte(`{["-0123456789tfn`) {
		assert.True(t, canStartValue(c), "byte %q", c)
	}
	for _, c := range []byte(" \n\tx}]:,.+aeE") {
		assert.False(t, canStartValue(c), "byte %q", c)
	}
}
