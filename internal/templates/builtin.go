// internal/templates/builtin.go
package templates

import "github.com/solatis/codematch/internal/types"

// DefaultTemplateID is the catch-all template tried after every other template.
const DefaultTemplateID = "default"

// Builtins returns the template definitions that ship with the engine.
func Builtins() []types.TemplateDefinition {
	return []types.TemplateDefinition{
		// in-store EAN-13 with 5-digit article and 5-digit weight/price
		{ID: "ean13_instore", Template: "2{code:5}{_}{embed:5}{_}"},
		// as above with the price check digit over the embedded value
		{ID: "ean13_instore_chk", Template: "2{code:5}{i}{embed:5}{_}"},
		// German press/print products: 2-digit title, 4-digit price
		{ID: "german_print", Template: "4{code:2}{_:5}{embed:4}{_}"},
		// GS1-128 with application identifier 01 (GTIN)
		{ID: "ean14_code128", Template: "01{code:ean14}"},
		{ID: DefaultTemplateID, Template: "{*}"},
	}
}
