package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestVaultError_Error(t *testing.T) {
	err := NewInvalidRequest("content is required")
	if got := err.Error(); got != "INVALID_REQUEST: content is required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("capsule", "cap1")
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if !strings.Contains(err.Message, "cap1") {
		t.Errorf("Message = %q, want identifier included", err.Message)
	}
	if err.Details["identifier"] != "cap1" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestNewStillLocked(t *testing.T) {
	err := NewStillLocked("cap1", "3d 4h left")
	if err.Status != 423 {
		t.Errorf("Status = %d, want 423", err.Status)
	}
	if err.Details["remaining"] != "3d 4h left" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestIs(t *testing.T) {
	if !Is(NewNotFound("capsule", "x"), ErrNotFound) {
		t.Error("Is should match the code")
	}
	if Is(NewNotFound("capsule", "x"), ErrInvalidRequest) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrInternal) {
		t.Error("Is should not match plain errors")
	}
}
