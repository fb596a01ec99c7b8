package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"duplicate registration", ErrDuplicateRegistration, true},
		{"capacity exceeded", ErrCapacityExceeded, true},
		{"not connected", ErrNotConnected, true},
		{"not started", ErrNotStarted, true},
		{"already started", ErrAlreadyStarted, true},
		{"invalid config", ErrInvalidConfig, true},
		{"connect failure", ErrConnectFailure, false},
		{"collaborator unavailable", ErrCollaboratorUnavailable, false},
		{"plain error", fmt.Errorf("boom"), false},
		{"wrapped sentinel", fmt.Errorf("register: %w", ErrDuplicateRegistration), true},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalid(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connect failure", ErrConnectFailure, true},
		{"collaborator unavailable", ErrCollaboratorUnavailable, true},
		{"not connected", ErrNotConnected, false},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTransient(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"invalid sentinel", ErrNotConnected, ErrorInvalid},
		{"transient sentinel", ErrConnectFailure, ErrorTransient},
		{"unknown defaults to transient", fmt.Errorf("mystery"), ErrorTransient},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.err); got != test.expected {
				t.Errorf("Classify() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	base := fmt.Errorf("underlying")
	err := Wrap(base, "manager", "Register", "duplicate check")

	if !errors.Is(err, base) {
		t.Error("wrapped error should match underlying via errors.Is")
	}
	if !strings.Contains(err.Error(), "manager.Register: duplicate check failed") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if Wrap(nil, "a", "b", "c") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapInvalid_PreservesSentinel(t *testing.T) {
	err := WrapInvalid(ErrCapacityExceeded, "manager", "Register", "capacity check")

	if !errors.Is(err, ErrCapacityExceeded) {
		t.Error("classified error should unwrap to sentinel")
	}
	if !IsInvalid(err) {
		t.Error("classified error should report invalid")
	}

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatal("expected ClassifiedError")
	}
	if ce.Component != "manager" || ce.Operation != "Register" {
		t.Errorf("unexpected origin: %s.%s", ce.Component, ce.Operation)
	}
}

func TestWrapTransient_NilPassthrough(t *testing.T) {
	if WrapTransient(nil, "a", "b", "c") != nil {
		t.Error("WrapTransient(nil) should return nil")
	}
	if WrapFatal(nil, "a", "b", "c") != nil {
		t.Error("WrapFatal(nil) should return nil")
	}
	if WrapInvalid(nil, "a", "b", "c") != nil {
		t.Error("WrapInvalid(nil) should return nil")
	}
}
