package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagemarkError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("unexpected end of JSON input")

	// When: wrapping with PagemarkError
	pe := New(ErrCodeDocumentLoad, "cannot load doc.json", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, pe)
	assert.Equal(t, originalErr, errors.Unwrap(pe))
	assert.True(t, errors.Is(pe, originalErr))
}

func TestPagemarkError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "extract error",
			code:     ErrCodeTextExtract,
			message:  "page 3: no text content",
			expected: "[ERR_203_TEXT_EXTRACT] page 3: no text content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestPagemarkError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodePageRender, "page 1 failed", nil)
	err2 := New(ErrCodePageRender, "page 2 failed", nil)
	err3 := New(ErrCodeTextExtract, "page 2 failed", nil)

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestPagemarkError_CategoryAndSeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
		wantSeverity Severity
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityFatal},
		{ErrCodeConfigNotFound, CategoryConfig, SeverityError},
		{ErrCodeDocumentLoad, CategoryIO, SeverityFatal},
		{ErrCodePageRender, CategoryIO, SeverityWarning},
		{ErrCodeTextExtract, CategoryIO, SeverityWarning},
		{ErrCodeOutputWrite, CategoryIO, SeverityError},
		{ErrCodeKeywordEmpty, CategoryValidation, SeverityFatal},
		{ErrCodeInvalidRange, CategoryValidation, SeverityError},
		{ErrCodeInternal, CategoryInternal, SeverityError},
		{"BAD", CategoryInternal, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestPageError_IsPageScoped(t *testing.T) {
	// Given: an extraction failure on page 4
	err := PageError(ErrCodeTextExtract, 4, errors.New("boom"))

	// Then: it is page scoped and carries the page number
	assert.True(t, IsPageScoped(err))
	assert.False(t, IsFatal(err))
	assert.Equal(t, "4", err.Details["page"])
	assert.Equal(t, "page 4: boom", err.Message)

	// And: wrapping keeps it discoverable
	wrapped := fmt.Errorf("highlight: %w", err)
	assert.True(t, IsPageScoped(wrapped))
	assert.Equal(t, ErrCodeTextExtract, GetCode(wrapped))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))

	original := errors.New("something went wrong")
	pe := Wrap(ErrCodeInternal, original)
	require.NotNil(t, pe)
	assert.Equal(t, "something went wrong", pe.Message)
	assert.Equal(t, original, pe.Cause)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrCodeDocumentLoad, "x", nil)))
	assert.False(t, IsFatal(New(ErrCodePageRender, "x", nil)))
	assert.False(t, IsFatal(errors.New("plain")))
	assert.False(t, IsFatal(nil))
}

func TestFormatForCLI(t *testing.T) {
	err := New(ErrCodeKeywordEmpty, "no keyword given", nil).
		WithSuggestion("pass --keyword or set highlight.keyword in .pagemark.yaml")

	out := FormatForCLI(err)

	assert.Contains(t, out, "Error: no keyword given")
	assert.Contains(t, out, "Hint: pass --keyword")
	assert.Contains(t, out, "Code: ERR_402_KEYWORD_EMPTY")
	assert.Empty(t, FormatForCLI(nil))
	assert.Contains(t, FormatForCLI(errors.New("plain")), "ERR_501_INTERNAL")
}

func TestFormatJSON(t *testing.T) {
	err := PageError(ErrCodePageRender, 2, errors.New("no surface"))

	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, ErrCodePageRender, parsed["code"])
	assert.Equal(t, "IO", parsed["category"])
	assert.Equal(t, "no surface", parsed["cause"])
}

func TestFormatForLog(t *testing.T) {
	assert.Nil(t, FormatForLog(nil))
	assert.Equal(t, []any{"error", "plain"}, FormatForLog(errors.New("plain")))

	attrs := FormatForLog(PageError(ErrCodeTextExtract, 1, nil))
	assert.Contains(t, attrs, "error_code")
	assert.Contains(t, attrs, ErrCodeTextExtract)
	assert.Contains(t, attrs, "detail_page")
}
