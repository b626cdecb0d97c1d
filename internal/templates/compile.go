// internal/templates/compile.go
package templates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/solatis/codematch/internal/types"
)

/*
 * Template compilation and validation.
 *
 * Compiles a types.TemplateDefinition such as "2{code:5}{_}{embed:5}{_}" into a
 * Template with an ordered component list, a fixed expected length and an
 * anchored field-extraction pattern.
 *
 * Compilation workflow:
 *   1. Tokenize: repeatedly strip either a {...} token or a maximal run of
 *      non-'{' characters (plain text)
 *   2. Parse each token into a Component; any failure aborts the template
 *   3. Validate singletons (code, embed, price, i, * at most once) and that
 *      {i} is accompanied by {embed:5}
 *   4. Build the anchored pattern and sum the expected length
 *
 * Field grammar:
 *   {code:ean8|ean13|ean14|N}  lookup code
 *   {embed:N}                  embedded weight/amount
 *   {price:N}                  embedded price
 *   {_:N}                      ignored characters, may repeat
 *   {i}                        internal checksum over the 5-digit embed
 *   {*}                        remainder of the input
 * A missing ":N" defaults to 1. Embed and price fields are at most 18 digits
 * wide so their value always fits an int.
 */

// maxValueDigits bounds {embed:N} and {price:N}; 10^18-1 fits an int64.
const maxValueDigits = 18

// Template is a compiled, immutable code template.
type Template struct {
	ID             string
	Project        types.ProjectID
	Source         string
	Components     []Component
	ExpectedLength int // 0 means any length (template contains a catch-all)

	pattern *regexp.Regexp
}

// Compile validates and compiles a template definition.
func Compile(def types.TemplateDefinition) (*Template, error) {
	if def.Template == "" {
		return nil, types.ErrEmptyTemplate
	}
	if len(def.Template) > types.MaxTemplateLength {
		return nil, types.ErrTemplateTooLong
	}

	tokens, err := tokenize(def.Template)
	if err != nil {
		return nil, err
	}

	components := make([]Component, 0, len(tokens))
	for _, tok := range tokens {
		c, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}

	if err := validateComponents(components); err != nil {
		return nil, err
	}

	pattern, err := buildPattern(components)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTemplateSyntax, err)
	}

	return &Template{
		ID:             def.ID,
		Project:        def.Project,
		Source:         def.Template,
		Components:     components,
		ExpectedLength: expectedLength(components),
		pattern:        pattern,
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(def types.TemplateDefinition) *Template {
	t, err := Compile(def)
	if err != nil {
		panic(fmt.Sprintf("templates: compile %s: %v", def.ID, err))
	}
	return t
}

// tokenize splits a template source into {...} tokens and plain-text runs.
func tokenize(src string) ([]string, error) {
	var tokens []string
	for len(src) > 0 {
		if src[0] == '{' {
			end := strings.IndexByte(src, '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated token %q", types.ErrTemplateSyntax, src)
			}
			tokens = append(tokens, src[:end+1])
			src = src[end+1:]
			continue
		}
		end := strings.IndexByte(src, '{')
		if end < 0 {
			end = len(src)
		}
		tokens = append(tokens, src[:end])
		src = src[end:]
	}
	return tokens, nil
}

// parseToken converts a single token into a Component.
func parseToken(tok string) (Component, error) {
	if tok[0] != '{' {
		return Component{Kind: KindPlainText, Literal: tok, Length: utf8.RuneCountInString(tok)}, nil
	}

	body := tok[1 : len(tok)-1]
	name, arg, hasArg := strings.Cut(body, ":")

	switch name {
	case "code":
		switch arg {
		case "ean8":
			return Component{Kind: KindCode, Code: CodeEAN8, Length: 8}, nil
		case "ean13":
			return Component{Kind: KindCode, Code: CodeEAN13, Length: 13}, nil
		case "ean14":
			return Component{Kind: KindCode, Code: CodeEAN14, Length: 14}, nil
		}
		n, err := parseLength(tok, arg, hasArg)
		if err != nil {
			return Component{}, err
		}
		return Component{Kind: KindCode, Code: CodeFixed, Length: n}, nil

	case "embed", "price", "_":
		n, err := parseLength(tok, arg, hasArg)
		if err != nil {
			return Component{}, err
		}
		kind := KindIgnore
		switch name {
		case "embed":
			kind = KindEmbed
		case "price":
			kind = KindPrice
		}
		if kind != KindIgnore && n > maxValueDigits {
			return Component{}, fmt.Errorf("%w: %s wider than %d digits", types.ErrInvalidLength, tok, maxValueDigits)
		}
		return Component{Kind: kind, Length: n}, nil

	case "i":
		if hasArg && arg != "1" {
			return Component{}, fmt.Errorf("%w: %s takes no length", types.ErrInvalidLength, tok)
		}
		return Component{Kind: KindInternalChecksum, Length: 1}, nil

	case "*":
		if hasArg {
			return Component{}, fmt.Errorf("%w: %s takes no length", types.ErrInvalidLength, tok)
		}
		return Component{Kind: KindCatchall}, nil

	default:
		return Component{}, fmt.Errorf("%w: %s", types.ErrUnknownField, tok)
	}
}

// parseLength parses a positive decimal field width, defaulting to 1 when absent.
func parseLength(tok, arg string, hasArg bool) (int, error) {
	if !hasArg {
		return 1, nil
	}
	if arg == "" {
		return 0, fmt.Errorf("%w: %s", types.ErrInvalidLength, tok)
	}
	for i := 0; i < len(arg); i++ {
		if arg[i] < '0' || arg[i] > '9' {
			return 0, fmt.Errorf("%w: %s", types.ErrInvalidLength, tok)
		}
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 || n > types.MaxCodeLength {
		return 0, fmt.Errorf("%w: %s", types.ErrInvalidLength, tok)
	}
	return n, nil
}

// validateComponents enforces singleton kinds and the checksum/embed pairing.
func validateComponents(components []Component) error {
	seen := make(map[ComponentKind]bool, len(components))
	var embed *Component

	for i := range components {
		c := &components[i]
		if c.Kind.singleton() {
			if seen[c.Kind] {
				return fmt.Errorf("%w: %s", types.ErrDuplicateComponent, c.Kind)
			}
			seen[c.Kind] = true
		}
		if c.Kind == KindEmbed {
			embed = c
		}
	}

	if seen[KindInternalChecksum] && (embed == nil || embed.Length != 5) {
		return types.ErrChecksumWithoutEmbed
	}
	return nil
}

// buildPattern builds an anchored regexp with one capture group per component.
func buildPattern(components []Component) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for _, c := range components {
		switch c.Kind {
		case KindPlainText:
			b.WriteString("(" + regexp.QuoteMeta(c.Literal) + ")")
		case KindCode, KindEmbed, KindPrice:
			fmt.Fprintf(&b, `(\d{%d})`, c.Length)
		case KindIgnore:
			fmt.Fprintf(&b, `(.{%d})`, c.Length)
		case KindInternalChecksum:
			b.WriteString(`(\d)`)
		case KindCatchall:
			b.WriteString(`(.*)`)
		}
	}
	b.WriteString(`$`)
	return regexp.Compile(b.String())
}

// expectedLength sums component widths; a catch-all makes the length unconstrained.
func expectedLength(components []Component) int {
	total := 0
	for _, c := range components {
		if c.Kind == KindCatchall {
			return 0
		}
		total += c.Length
	}
	return total
}
