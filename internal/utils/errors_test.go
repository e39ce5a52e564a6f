// internal/utils/errors_test.go
package utils

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := WrapError(cause, ErrCodeNavigationFailed, "navigation failed")

	if !errors.Is(err, cause) {
		t.Error("Expected wrapped error to match its cause")
	}

	if !errors.Is(err, NewError(ErrCodeNavigationFailed, "")) {
		t.Error("Expected error to match its code")
	}

	if errors.Is(err, NewError(ErrCodeScreenshotFailed, "")) {
		t.Error("Expected error not to match a different code")
	}

	msg := err.Error()
	if !strings.Contains(msg, "NAVIGATION_FAILED") {
		t.Errorf("Expected code in message, got %q", msg)
	}
	if !strings.Contains(msg, "connection refused") {
		t.Errorf("Expected cause in message, got %q", msg)
	}
}

func TestNewErrorWithoutCause(t *testing.T) {
	err := NewError(ErrCodeBrowserFailed, "failed to acquire browser session")

	if err.Unwrap() != nil {
		t.Error("Expected no cause")
	}

	if strings.Contains(err.Error(), "caused by") {
		t.Errorf("Expected no cause suffix, got %q", err.Error())
	}
}
