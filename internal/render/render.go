// Package render implements the Mustache-style {{name}} interpolation and
// auto-dedent that IString values go through at evaluation time (spec
// §4.3). No pack repo vendors a templating engine for this text-based
// shape (CUE's own "\(x)" interpolation is AST-node based, a different
// mechanism), so this is a small hand-written scanner, in the spirit of
// cue/scanner's own rune-at-a-time token reading.
package render

import "strings"

// Lookup resolves one interpolation name against the flattened lexical
// scope (spec §4.3: "current lexical scope flattened into a plain
// mapping, child overrides parent"). ok is false when the name is unbound.
type Lookup func(name string) (string, bool)

// Dedent strips a single leading and trailing empty line, matching
// spec §4.3's "auto-dedented (strip leading/trailing empty line)" rule
// for IString values. Internal indentation is left untouched.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if n := len(lines); n > 1 && strings.TrimSpace(lines[n-1]) == "" {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}

// Render scans raw for {{name}} holes and substitutes each with lookup's
// result. An unresolved name or malformed hole triggers the spec §4.3
// fallback: "rendering errors fall back to the raw dedented text."
func Render(raw string, lookup Lookup) string {
	dedented := Dedent(raw)
	out, err := render(dedented, lookup)
	if err != nil {
		return dedented
	}
	return out
}

func render(s string, lookup Lookup) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		open := strings.Index(s[i:], "{{")
		if open < 0 {
			b.WriteString(s[i:])
			break
		}
		b.WriteString(s[i : i+open])
		start := i + open + 2
		close := strings.Index(s[start:], "}}")
		if close < 0 {
			return "", errUnclosed
		}
		name := strings.TrimSpace(s[start : start+close])
		val, ok := lookup(name)
		if !ok {
			return "", errUnbound
		}
		b.WriteString(val)
		i = start + close + 2
	}
	return b.String(), nil
}

type renderError string

func (e renderError) Error() string { return string(e) }

const (
	errUnclosed = renderError("render: unclosed {{ }}")
	errUnbound  = renderError("render: unbound name")
)

// Flatten walks a lexical scope chain's layers, given innermost first, and
// builds the plain string->string mapping Render consults, applying
// child-overrides-parent by simply not overwriting a name already set.
func Flatten(layers []map[string]string) map[string]string {
	out := map[string]string{}
	for _, layer := range layers {
		for k, v := range layer {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}
	return out
}
