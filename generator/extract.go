package generator

import (
	"encoding/json"
	"strings"
)

// ExtractLastJSON returns the last JSON value embedded in s.
//
// The scan tries to decode one value at every offset. A successful decode
// moves the scan past the consumed input; a failed one moves it by a single
// byte. Leading commentary, markdown fences and earlier fragments are
// therefore skipped and the value starting furthest into s wins.
//
// An object or array can only complete if its closing bracket appears later
// in s, so openers past the last '}' or ']' are skipped without decoding.
// Input that keeps reopening containers before a late closer still costs
// quadratic time.
func ExtractLastJSON(s string) (any, error) {
	var (
		last  any
		found bool
	)
	lastObjEnd := strings.LastIndexByte(s, '}')
	lastArrEnd := strings.LastIndexByte(s, ']')
	for i := 0; i < len(s); {
		c := s[i]
		if !canStartValue(c) || (c == '{' && i > lastObjEnd) || (c == '[' && i > lastArrEnd) {
			i++
			continue
		}
		v, n, ok := decodeAt(s, i)
		if !ok {
			i++
			continue
		}
		last, found = v, true
		i += n
	}
	if !found {
		return nil, ErrNoJSONFound
	}
	return last, nil
}

// decodeAt decodes exactly one value starting at s[i] and reports how many
// bytes it consumed.
func decodeAt(s string, i int) (any, int, bool) {
	dec := json.NewDecoder(strings.NewReader(s[i:]))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, 0, false
	}
	n := int(dec.InputOffset())
	if n <= 0 {
		return nil, 0, false
	}
	return v, n, true
}

// canStartValue reports whether a JSON value may begin with c. Whitespace is
// excluded: a value preceded by spaces is found at its own offset.
func canStartValue(c byte) bool {
	switch c {
	case '{', '[', '"', '-', 't', 'f', 'n':
		return true
	}
	return c >= '0' && c <= '9'
}
