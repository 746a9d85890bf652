package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTTY_WithBuffer_ReturnsFalse(t *testing.T) {
	// Given: a bytes.Buffer (not a TTY)
	buf := &bytes.Buffer{}

	// When: checking if it's a TTY
	result := IsTTY(buf)

	// Then: returns false
	assert.False(t, result)
}

func TestIsTTY_WithNil_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(nil))
}

func TestIsTTY_WithRegularFile_ReturnsFalse(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTTY(f))
}

func TestDetectNoColor_WithEnv(t *testing.T) {
	// Given: NO_COLOR environment variable set
	t.Setenv("NO_COLOR", "1")

	// When: detecting no color
	result := DetectNoColor()

	// Then: returns true
	assert.True(t, result)
}

func TestDetectNoColor_WithoutEnv(t *testing.T) {
	// Given: NO_COLOR environment variable not set
	t.Setenv("NO_COLOR", "")
	_ = os.Unsetenv("NO_COLOR")

	// Then: returns false
	assert.False(t, DetectNoColor())
}

func TestDetectCI_WithEnv(t *testing.T) {
	t.Setenv("CI", "true")

	assert.True(t, DetectCI())
}

func TestColorEnabled(t *testing.T) {
	buf := &bytes.Buffer{}

	// A buffer is never colored, whatever the flag says
	assert.False(t, ColorEnabled(buf, false))
	assert.False(t, ColorEnabled(buf, true))

	// The flag wins even for a terminal
	assert.False(t, ColorEnabled(os.Stdout, true))
}
