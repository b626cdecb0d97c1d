// Package types provides domain models shared across codematch components.
//
// Template definitions arrive from configuration as plain strings; the
// templates package compiles them. Keeping the definition type here lets
// config, the CLI and the gRPC layer pass definitions around without
// importing the engine.
package types

// ScanID represents a UUIDv7 scan journal identifier.
// UUIDv7 time-ordering keeps journal inserts clustered in B-tree indexes.
type ScanID string

// ProjectID identifies the retailer project a custom template or API key belongs to.
// Empty for built-in templates.
type ProjectID string

// BuiltinProject is the ProjectID carried by templates that ship with the engine.
const BuiltinProject ProjectID = ""

// TemplateDefinition is an uncompiled template as supplied by configuration.
type TemplateDefinition struct {
	Project  ProjectID // owning project, BuiltinProject for built-ins
	ID       string    // template identifier, e.g. "ean13_instore"
	Template string    // template source, e.g. "2{code:5}{_}{embed:5}{_}"
}

// Limits enforced on scanned input and template sources.
const (
	// MaxCodeLength bounds candidate strings accepted by the service layer.
	// GS1-128 payloads top out at 48 data characters; 128 leaves room for prefixes.
	MaxCodeLength = 128

	// MaxTemplateLength bounds template sources accepted from configuration.
	MaxTemplateLength = 256
)
