package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	underlying := stderrors.New("boom")
	err := NewParseError("src/main.rs", "rust", underlying)
	assert.Contains(t, err.Error(), "src/main.rs")
	assert.Contains(t, err.Error(), "rust")
	assert.True(t, stderrors.Is(err, underlying))
}

func TestSelectError_Suggestions(t *testing.T) {
	err := NewSelectError("mian", []string{"main", "min"})
	msg := err.Error()
	assert.Contains(t, msg, "mian")
	assert.Contains(t, msg, "main")
}

func TestSelectError_NoSuggestions(t *testing.T) {
	err := NewSelectError("zzz", nil)
	assert.Contains(t, err.Error(), "zzz")
}

func TestFileError(t *testing.T) {
	underlying := stderrors.New("permission denied")
	err := NewFileError("read", "/etc/shadow", underlying)
	assert.Contains(t, err.Error(), "read")
	assert.True(t, stderrors.Is(err, underlying))
}

func TestConfigError(t *testing.T) {
	underlying := stderrors.New("bad value")
	err := NewConfigError("output.label_limit", "-1", underlying)
	assert.Contains(t, err.Error(), "output.label_limit")
	assert.True(t, stderrors.Is(err, underlying))
}
