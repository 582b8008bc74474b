package gogen

import (
	"go/token"
	"strings"
	"unicode"
)

var initialisms = map[string]bool{
	"API": true, "HTTP": true, "ID": true, "JSON": true,
	"SQL": true, "URI": true, "URL": true, "UUID": true,
}

// exportedName converts an Avro name to an exported Go identifier:
// "user_id" -> "UserID", "createdAt" -> "CreatedAt".
func exportedName(s string) string {
	var b strings.Builder
	for _, part := range splitWords(s) {
		upper := strings.ToUpper(part)
		if initialisms[upper] {
			b.WriteString(upper)
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	name := b.String()
	if name == "" {
		return "X"
	}
	if !unicode.IsLetter([]rune(name)[0]) {
		name = "X" + name
	}
	return name
}

// unexportedName converts an Avro name to an unexported Go identifier,
// escaping keywords with a trailing underscore.
func unexportedName(s string) string {
	exp := exportedName(s)
	var name string
	if initialisms[exp] {
		name = strings.ToLower(exp)
	} else {
		r := []rune(exp)
		r[0] = unicode.ToLower(r[0])
		name = string(r)
	}
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}

// packageName derives a Go package name from the last namespace segment
func packageName(namespace, fallback string) string {
	if namespace == "" {
		return fallback
	}
	last := namespace[strings.LastIndexByte(namespace, '.')+1:]
	var b strings.Builder
	for _, r := range strings.ToLower(last) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		return fallback
	}
	if unicode.IsDigit([]rune(name)[0]) {
		name = "_" + name
	}
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})
}
