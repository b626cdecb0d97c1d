// internal/templates/embed.go
package templates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/solatis/codematch/internal/types"
)

/*
 * Code generation from a template.
 *
 * Embed walks the components in order and substitutes:
 *   plain text      -> literal
 *   {code} / {*}    -> baseCode verbatim
 *   {embed} / {price} -> value, zero-padded to the field width
 *   {i}             -> InternalChecksum5 over the padded embed digits
 *   {_:N}           -> N zeros
 *
 * A 13-character template is an EAN-13: the last digit is replaced with the
 * GS1 check digit over the first twelve. The finished code must match its
 * own template with IsValid and read back the same embed and price values;
 * otherwise ErrInvalidCode is returned.
 *
 * Values wider than their field return ErrEmbedOverflow rather than a code
 * that spills into neighbouring fields.
 */

// Embed renders a scannable code for baseCode with value in the embed field.
func (t *Template) Embed(baseCode string, value int) (string, error) {
	if value < 0 {
		return "", fmt.Errorf("%w: negative value %d", types.ErrEmbedOverflow, value)
	}

	// The checksum may precede the embed field, so render the embed digits first.
	var embedDigits string
	for _, c := range t.Components {
		if c.Kind == KindEmbed {
			s, err := padValue(value, c.Length)
			if err != nil {
				return "", err
			}
			embedDigits = s
		}
	}

	var b strings.Builder
	for _, c := range t.Components {
		switch c.Kind {
		case KindPlainText:
			b.WriteString(c.Literal)
		case KindCode, KindCatchall:
			b.WriteString(baseCode)
		case KindEmbed:
			b.WriteString(embedDigits)
		case KindPrice:
			s, err := padValue(value, c.Length)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case KindInternalChecksum:
			check, ok := InternalChecksum5(embedDigits)
			if !ok {
				return "", fmt.Errorf("%w: checksum over %q", types.ErrInvalidCode, embedDigits)
			}
			b.WriteString(strconv.Itoa(check))
		case KindIgnore:
			b.WriteString(strings.Repeat("0", c.Length))
		}
	}

	code := b.String()
	if t.ExpectedLength == 13 {
		if len(code) != 13 {
			return "", fmt.Errorf("%w: %q is not 13 digits", types.ErrInvalidCode, code)
		}
		check, ok := EANCheckDigit(code[:12])
		if !ok {
			return "", fmt.Errorf("%w: %q is not numeric", types.ErrInvalidCode, code)
		}
		code = code[:12] + strconv.Itoa(check)
	}

	r := t.Match(code)
	if r == nil || !r.IsValid() {
		return "", fmt.Errorf("%w: %q does not satisfy template %s", types.ErrInvalidCode, code, t.ID)
	}
	// the check digit may land inside the embed or price field
	if !r.carries(KindEmbed, value) || !r.carries(KindPrice, value) {
		return "", fmt.Errorf("%w: %q does not carry value %d in template %s", types.ErrInvalidCode, code, value, t.ID)
	}
	return code, nil
}

// carries reports whether the field of kind, if present, decodes to value.
func (r *ParseResult) carries(kind ComponentKind, value int) bool {
	if _, present := r.value(kind); !present {
		return true
	}
	got, ok := r.intValue(kind)
	return ok && got == value
}

// padValue renders value left-padded with zeros to width digits.
func padValue(value, width int) (string, error) {
	s := strconv.Itoa(value)
	if len(s) > width {
		return "", fmt.Errorf("%w: %d exceeds %d digits", types.ErrEmbedOverflow, value, width)
	}
	return strings.Repeat("0", width-len(s)) + s, nil
}
