// internal/templates/match.go
package templates

import (
	"strconv"
	"unicode/utf8"
)

/*
 * Template matching.
 *
 * Match flow:
 *   1. Length fast-path: templates with a fixed ExpectedLength reject any
 *      candidate of a different length without running the pattern
 *   2. Anchored pattern match, one capture group per component
 *   3. Captures zipped with components into a ParseResult
 *
 * Matching is syntactic only. Field-level validity (EAN check digits on
 * code fields, the internal checksum over the embed field) is reported by
 * ParseResult.IsValid so callers can tell "does not apply" from "applies but
 * corrupt".
 */

// Capture pairs a template component with the text it matched.
type Capture struct {
	Component Component
	Value     string
}

// ParseResult is the outcome of matching one candidate against one template.
type ParseResult struct {
	Template *Template
	Captures []Capture // one per component, in template order
}

// Match returns the field captures for candidate, or nil if the template does not apply.
func (t *Template) Match(candidate string) *ParseResult {
	if t.ExpectedLength > 0 && utf8.RuneCountInString(candidate) != t.ExpectedLength {
		return nil
	}

	groups := t.pattern.FindStringSubmatch(candidate)
	if groups == nil || len(groups)-1 != len(t.Components) {
		return nil
	}

	captures := make([]Capture, len(t.Components))
	for i, c := range t.Components {
		captures[i] = Capture{Component: c, Value: groups[i+1]}
	}
	return &ParseResult{Template: t, Captures: captures}
}

// value returns the first capture of the given kind.
func (r *ParseResult) value(kind ComponentKind) (string, bool) {
	for _, c := range r.Captures {
		if c.Component.Kind == kind {
			return c.Value, true
		}
	}
	return "", false
}

// LookupCode returns the code field capture, else the catch-all capture, else "".
func (r *ParseResult) LookupCode() string {
	if v, ok := r.value(KindCode); ok {
		return v
	}
	if v, ok := r.value(KindCatchall); ok {
		return v
	}
	return ""
}

// EmbeddedData returns the integer value of the embed field, if present.
func (r *ParseResult) EmbeddedData() (int, bool) {
	return r.intValue(KindEmbed)
}

// PriceData returns the integer value of the price field, if present.
func (r *ParseResult) PriceData() (int, bool) {
	return r.intValue(KindPrice)
}

func (r *ParseResult) intValue(kind ComponentKind) (int, bool) {
	v, ok := r.value(kind)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsValid reports whether every captured field passes its own check.
func (r *ParseResult) IsValid() bool {
	for _, c := range r.Captures {
		switch c.Component.Kind {
		case KindCode:
			if c.Component.Code != CodeFixed && !ValidEAN(c.Value, c.Component.Code.Length()) {
				return false
			}
		case KindInternalChecksum:
			embed, ok := r.value(KindEmbed)
			if !ok {
				return false
			}
			want, ok := InternalChecksum5(embed)
			if !ok || c.Value != strconv.Itoa(want) {
				return false
			}
		}
	}
	return true
}
