package types

import "errors"

// Sentinel errors for codematch operations.
var (
	// ErrEmptyTemplate indicates a template source with no components.
	ErrEmptyTemplate = errors.New("template is empty")

	// ErrTemplateTooLong indicates a template source exceeds MaxTemplateLength.
	ErrTemplateTooLong = errors.New("template exceeds maximum length")

	// ErrTemplateSyntax indicates an unterminated or malformed {...} token.
	ErrTemplateSyntax = errors.New("malformed template token")

	// ErrUnknownField indicates a {name:...} token with an unrecognised name.
	ErrUnknownField = errors.New("unknown template field")

	// ErrInvalidLength indicates a missing, non-numeric or non-positive field length.
	ErrInvalidLength = errors.New("invalid template field length")

	// ErrDuplicateComponent indicates a singleton field occurring more than once.
	ErrDuplicateComponent = errors.New("duplicate template component")

	// ErrChecksumWithoutEmbed indicates {i} without a 5-digit {embed:5}.
	ErrChecksumWithoutEmbed = errors.New("internal checksum requires a 5-digit embed field")

	// ErrTemplateNotFound indicates an unknown template ID.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrEmbedOverflow indicates an embed value that does not fit its field.
	ErrEmbedOverflow = errors.New("embed value does not fit template field")

	// ErrInvalidCode indicates a generated or supplied code failed validation.
	ErrInvalidCode = errors.New("code failed validation")

	// ErrCodeTooLong indicates a candidate code exceeds MaxCodeLength.
	ErrCodeTooLong = errors.New("code exceeds maximum length")
)
