package dts

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// propertyName returns key as written in a type literal: bare when it is an
// identifier name, otherwise as a string literal.
func propertyName(key string) string {
	if isIdentifierName(key) {
		return key
	}
	return quote(key)
}

// isIdentifierName approximates ECMAScript IdentifierName: a letter, '$' or
// '_' followed by letters, digits, marks, connector punctuation, '$' or '_'.
func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '$' || r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc)):
		case i > 0 && (r == '\u200c' || r == '\u200d'):
		default:
			return false
		}
	}
	return true
}

// quote renders s as a double-quoted string literal that is valid in both
// JSON and TypeScript.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

var commentReplacer = strings.NewReplacer(
	"*/", `*\/`,
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	"\u2028", " ",
	"\u2029", " ",
)

// commentText makes key safe to embed in a single-line block comment.
func commentText(key string) string {
	return commentReplacer.Replace(key)
}
