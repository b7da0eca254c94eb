package common

import (
	"errors"
	"strings"
	"testing"
)

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAppError("UPSTREAM_ERROR", "invoker unreachable", cause)

	if !strings.Contains(err.Error(), "UPSTREAM_ERROR") || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("AppError does not unwrap to its cause")
	}

	bare := NewAppError("CONFIG_ERROR", "missing key", nil)
	if bare.Error() != "CONFIG_ERROR: missing key" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) must be nil")
	}
	wrapped := WrapError(ErrCrop, "field 'titleTh'")
	if !errors.Is(wrapped, ErrCrop) {
		t.Errorf("wrapped = %v, does not classify as ErrCrop", wrapped)
	}
	if !strings.HasPrefix(wrapped.Error(), "field 'titleTh': ") {
		t.Errorf("wrapped = %q", wrapped.Error())
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrValidation, ErrGeometry, ErrCrop, ErrInvocation, ErrMalformedResponse, ErrGateRejected}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v classifies as %v", a, b)
			}
		}
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	v.Field("name", "card.jpg", Required)
	v.Field("data", "abc", Required)
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %s", v.ErrorMessage())
	}
	if v.Error() != nil {
		t.Errorf("Error() = %v on clean validator", v.Error())
	}

	v = NewValidator()
	v.Field("name", "", Required)
	v.Field("photos", nil, NotEmptySlice(0))
	v.Field("photos", nil, MaxItems(51, 50))
	if !v.HasErrors() {
		t.Fatal("expected errors")
	}
	err := v.Error()
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Error() = %v, want ErrValidation", err)
	}
	msg := err.Error()
	for _, want := range []string{"name", "must not be empty", "at most 50 items"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestRequiredTrimsWhitespace(t *testing.T) {
	if Required("name", "   ") == nil {
		t.Error("whitespace-only string passed Required")
	}
	if Required("name", nil) == nil {
		t.Error("nil passed Required")
	}
	if Required("count", 0) != nil {
		t.Error("non-string zero value failed Required")
	}
}
