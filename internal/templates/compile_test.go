// internal/templates/compile_test.go
package templates

import (
	"errors"
	"strings"
	"testing"

	"github.com/solatis/codematch/internal/types"
)

func compileSource(source string) (*Template, error) {
	return Compile(types.TemplateDefinition{ID: "test", Template: source})
}

func TestCompile_InstoreTemplate(t *testing.T) {
	tmpl, err := compileSource("2{code:5}{_}{embed:5}{_}")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	want := []Component{
		{Kind: KindPlainText, Literal: "2", Length: 1},
		{Kind: KindCode, Code: CodeFixed, Length: 5},
		{Kind: KindIgnore, Length: 1},
		{Kind: KindEmbed, Length: 5},
		{Kind: KindIgnore, Length: 1},
	}
	if len(tmpl.Components) != len(want) {
		t.Fatalf("len(Components) = %v, want %v", len(tmpl.Components), len(want))
	}
	for i := range want {
		if tmpl.Components[i] != want[i] {
			t.Errorf("Components[%d] = %+v, want %+v", i, tmpl.Components[i], want[i])
		}
	}
	if tmpl.ExpectedLength != 13 {
		t.Errorf("ExpectedLength = %v, want 13", tmpl.ExpectedLength)
	}
}

func TestCompile_CodeKinds(t *testing.T) {
	tests := []struct {
		source string
		kind   CodeKind
		length int
	}{
		{"{code:ean8}", CodeEAN8, 8},
		{"{code:ean13}", CodeEAN13, 13},
		{"{code:ean14}", CodeEAN14, 14},
		{"{code:7}", CodeFixed, 7},
		{"{code}", CodeFixed, 1},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tmpl, err := compileSource(tt.source)
			if err != nil {
				t.Fatalf("Compile() error = %v, want nil", err)
			}
			c := tmpl.Components[0]
			if c.Kind != KindCode || c.Code != tt.kind || c.Length != tt.length {
				t.Errorf("component = %+v, want code %v length %v", c, tt.kind, tt.length)
			}
			if tmpl.ExpectedLength != tt.length {
				t.Errorf("ExpectedLength = %v, want %v", tmpl.ExpectedLength, tt.length)
			}
		})
	}
}

func TestCompile_DefaultLengths(t *testing.T) {
	tmpl, err := compileSource("{embed}{price}{_}{i}")
	if !errors.Is(err, types.ErrChecksumWithoutEmbed) {
		t.Fatalf("Compile() error = %v, want ErrChecksumWithoutEmbed", err)
	}
	if tmpl != nil {
		t.Errorf("Compile() returned template on error")
	}

	tmpl, err = compileSource("{embed}{price}{_}")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	for i, c := range tmpl.Components {
		if c.Length != 1 {
			t.Errorf("Components[%d].Length = %v, want 1", i, c.Length)
		}
	}
}

func TestCompile_CatchallHasNoExpectedLength(t *testing.T) {
	for _, source := range []string{"{*}", "01{*}"} {
		tmpl, err := compileSource(source)
		if err != nil {
			t.Fatalf("Compile(%q) error = %v, want nil", source, err)
		}
		if tmpl.ExpectedLength != 0 {
			t.Errorf("Compile(%q).ExpectedLength = %v, want 0", source, tmpl.ExpectedLength)
		}
	}
}

func TestCompile_PlainTextIsLiteral(t *testing.T) {
	tmpl, err := compileSource("a.b}{code:2}x+")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if len(tmpl.Components) != 3 {
		t.Fatalf("len(Components) = %v, want 3", len(tmpl.Components))
	}
	if tmpl.Components[0].Literal != "a.b}" {
		t.Errorf("Components[0].Literal = %q, want %q", tmpl.Components[0].Literal, "a.b}")
	}
	if tmpl.Match("a.b}12x+") == nil {
		t.Errorf("Match() = nil, want match on literal text")
	}
	if tmpl.Match("aXb}12x+") != nil {
		t.Errorf("Match() matched with '.' treated as a wildcard")
	}
}

func TestCompile_IgnoreMayRepeat(t *testing.T) {
	tmpl, err := compileSource("{_:2}{code:3}{_:2}")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if tmpl.ExpectedLength != 7 {
		t.Errorf("ExpectedLength = %v, want 7", tmpl.ExpectedLength)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr error
	}{
		{"empty", "", types.ErrEmptyTemplate},
		{"unterminated token", "2{code:5", types.ErrTemplateSyntax},
		{"unknown field", "{weight:5}", types.ErrUnknownField},
		{"empty field name", "{}", types.ErrUnknownField},
		{"unknown code kind", "{code:upc}", types.ErrInvalidLength},
		{"zero length", "{embed:0}", types.ErrInvalidLength},
		{"negative length", "{_:-1}", types.ErrInvalidLength},
		{"signed length", "{embed:+5}", types.ErrInvalidLength},
		{"empty length", "{price:}", types.ErrInvalidLength},
		{"oversized length", "{code:9999}", types.ErrInvalidLength},
		{"embed wider than int", "{embed:19}", types.ErrInvalidLength},
		{"price wider than int", "{code:2}{price:40}", types.ErrInvalidLength},
		{"checksum with length", "{embed:5}{i:2}", types.ErrInvalidLength},
		{"catchall with length", "{*:3}", types.ErrInvalidLength},
		{"duplicate embed", "{embed:5}{embed:5}", types.ErrDuplicateComponent},
		{"duplicate code", "{code:5}{code:ean13}", types.ErrDuplicateComponent},
		{"duplicate price", "{price:3}{price:3}", types.ErrDuplicateComponent},
		{"duplicate checksum", "{embed:5}{i}{i}", types.ErrDuplicateComponent},
		{"duplicate catchall", "{*}{*}", types.ErrDuplicateComponent},
		{"checksum without embed", "2{code:5}{i}{_:6}", types.ErrChecksumWithoutEmbed},
		{"checksum with short embed", "2{code:5}{i}{embed:4}{_:2}", types.ErrChecksumWithoutEmbed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := compileSource(tt.source)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile(%q) error = %v, want %v", tt.source, err, tt.wantErr)
			}
			if tmpl != nil {
				t.Errorf("Compile(%q) returned a template alongside an error", tt.source)
			}
		})
	}
}

func TestCompile_WidestValueFieldDecodes(t *testing.T) {
	tmpl := mustTemplate(t, "wide", "{embed:18}{_:30}")

	candidate := "999999999999999999" + strings.Repeat("x", 30)
	result := tmpl.Match(candidate)
	if result == nil {
		t.Fatalf("Match(%q) = nil, want result", candidate)
	}
	embedded, ok := result.EmbeddedData()
	if !ok || embedded != 999999999999999999 {
		t.Errorf("EmbeddedData() = %v, %v; want 999999999999999999, true", embedded, ok)
	}
}

func TestCompile_TooLong(t *testing.T) {
	source := make([]byte, types.MaxTemplateLength+1)
	for i := range source {
		source[i] = '9'
	}
	_, err := compileSource(string(source))
	if !errors.Is(err, types.ErrTemplateTooLong) {
		t.Errorf("Compile() error = %v, want ErrTemplateTooLong", err)
	}
}

func TestCompile_KeepsDefinition(t *testing.T) {
	tmpl, err := Compile(types.TemplateDefinition{Project: "acme", ID: "acme_weight", Template: "29{code:5}{embed:5}{_}"})
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if tmpl.ID != "acme_weight" || tmpl.Project != "acme" || tmpl.Source != "29{code:5}{embed:5}{_}" {
		t.Errorf("Compile() = %+v, definition fields not kept", tmpl)
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("MustCompile() did not panic on invalid template")
		}
	}()
	MustCompile(types.TemplateDefinition{ID: "bad", Template: "{nope}"})
}

func TestComponent_String(t *testing.T) {
	tmpl, err := compileSource("2{code:5}{i}{embed:5}{_}")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	got := ""
	for _, c := range tmpl.Components {
		got += c.String()
	}
	if got != "2{code:5}{i}{embed:5}{_:1}" {
		t.Errorf("rendered components = %q", got)
	}
}
