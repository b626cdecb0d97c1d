// internal/templates/component.go
package templates

import "fmt"

// ComponentKind identifies the type of a template component.
type ComponentKind int

const (
	KindPlainText ComponentKind = iota
	KindCode
	KindEmbed
	KindPrice
	KindIgnore
	KindInternalChecksum
	KindCatchall
)

func (k ComponentKind) String() string {
	switch k {
	case KindPlainText:
		return "plaintext"
	case KindCode:
		return "code"
	case KindEmbed:
		return "embed"
	case KindPrice:
		return "price"
	case KindIgnore:
		return "ignore"
	case KindInternalChecksum:
		return "internal_checksum"
	case KindCatchall:
		return "catchall"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// singleton reports whether the kind may occur at most once per template.
func (k ComponentKind) singleton() bool {
	return k != KindPlainText && k != KindIgnore
}

// CodeKind describes the lookup portion of a code field.
type CodeKind int

const (
	CodeFixed CodeKind = iota // arbitrary fixed length, no checksum
	CodeEAN8
	CodeEAN13
	CodeEAN14
)

// Length returns the fixed width of EAN code kinds, 0 for CodeFixed.
func (c CodeKind) Length() int {
	switch c {
	case CodeEAN8:
		return 8
	case CodeEAN13:
		return 13
	case CodeEAN14:
		return 14
	default:
		return 0
	}
}

func (c CodeKind) String() string {
	switch c {
	case CodeEAN8:
		return "ean8"
	case CodeEAN13:
		return "ean13"
	case CodeEAN14:
		return "ean14"
	default:
		return "fixed"
	}
}

// Component is one compiled element of a template.
type Component struct {
	Kind    ComponentKind
	Literal string   // KindPlainText only
	Code    CodeKind // KindCode only
	Length  int      // width in characters; 0 for KindCatchall
}

func (c Component) String() string {
	switch c.Kind {
	case KindPlainText:
		return c.Literal
	case KindCode:
		if c.Code != CodeFixed {
			return "{code:" + c.Code.String() + "}"
		}
		return fmt.Sprintf("{code:%d}", c.Length)
	case KindEmbed:
		return fmt.Sprintf("{embed:%d}", c.Length)
	case KindPrice:
		return fmt.Sprintf("{price:%d}", c.Length)
	case KindIgnore:
		return fmt.Sprintf("{_:%d}", c.Length)
	case KindInternalChecksum:
		return "{i}"
	case KindCatchall:
		return "{*}"
	default:
		return c.Kind.String()
	}
}
