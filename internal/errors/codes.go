// Package errors provides structured error handling for pagemark.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (document, page, output)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates document, page and output I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the whole run must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed but others can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeDocumentLoad = "ERR_201_DOCUMENT_LOAD"
	ErrCodePageRender   = "ERR_202_PAGE_RENDER"
	ErrCodeTextExtract  = "ERR_203_TEXT_EXTRACT"
	ErrCodeOutputWrite  = "ERR_204_OUTPUT_WRITE"
	ErrCodeOutputLocked = "ERR_205_OUTPUT_LOCKED"

	// Validation errors (400-499)
	ErrCodeInvalidInput  = "ERR_401_INVALID_INPUT"
	ErrCodeKeywordEmpty  = "ERR_402_KEYWORD_EMPTY"
	ErrCodeInvalidRange  = "ERR_403_INVALID_RANGE"
	ErrCodeUnknownFormat = "ERR_404_UNKNOWN_FORMAT"

	// Internal errors (500-599)
	ErrCodeInternal  = "ERR_501_INTERNAL"
	ErrCodeHighlight = "ERR_502_HIGHLIGHT_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "201" from "ERR_201_DOCUMENT_LOAD"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Page-level failures only degrade the run; a document that cannot be
// loaded leaves nothing to process.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeDocumentLoad, ErrCodeConfigInvalid, ErrCodeKeywordEmpty:
		return SeverityFatal
	case ErrCodePageRender, ErrCodeTextExtract:
		return SeverityWarning
	default:
		return SeverityError
	}
}
