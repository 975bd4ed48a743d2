package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewFormatsMessage(t *testing.T) {
	err := New(ErrCodeInvalidLayout, "unknown layout mode %q", "fan")

	if err.Code != ErrCodeInvalidLayout {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidLayout)
	}
	if want := `INVALID_LAYOUT: unknown layout mode "fan"`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidManifest, cause, "decode %s", "book.json")

	if got, want := err.Error(), "INVALID_MANIFEST: decode book.json: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if errors.Unwrap(err) != cause || !errors.Is(err, cause) {
		t.Error("wrapped cause is not reachable")
	}
}

func TestCodeLookups(t *testing.T) {
	inner := New(ErrCodeInvalidLayout, "no strategy")
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"coded", New(ErrCodeInvalidPage, "page 7 out of range"), ErrCodeInvalidPage, "page 7 out of range"},
		{"outer code wins", Wrap(ErrCodeInvalidConfig, inner, "load viewer.toml"), ErrCodeInvalidConfig, "load viewer.toml"},
		{"through fmt wrapping", fmt.Errorf("layout: %w", inner), ErrCodeInvalidLayout, "no strategy"},
		{"plain", errors.New("disk full"), "", "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestIsRejects(t *testing.T) {
	if Is(nil, ErrCodeInvalidInput) {
		t.Error("Is(nil) = true")
	}
	if Is(New(ErrCodeInvalidInput, "x"), ErrCodeInvalidLayout) {
		t.Error("Is matched a different code")
	}
	if GetCode(nil) != "" {
		t.Error("GetCode(nil) should be empty")
	}
}
