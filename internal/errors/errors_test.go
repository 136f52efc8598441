package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestNewFallsBackToRegisteredMessage(t *testing.T) {
	err := New(CodeNotFound, "")
	if err.Message() != "resource not found" {
		t.Fatalf("expected registry message, got %q", err.Message())
	}
	if err.Code() != CodeNotFound {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeLedgerFailure, cause, "submit transaction")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error must match its cause")
	}
	if CodeOf(err) != CodeLedgerFailure {
		t.Fatalf("unexpected code %s", CodeOf(err))
	}
	if got := err.Error(); got != "[LEDGER_FAILURE] submit transaction: connection refused" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeConflict, "first")
	b := New(CodeConflict, "second")
	if !stdErrors.Is(a, b) {
		t.Fatal("errors with the same code must match")
	}
	if stdErrors.Is(a, New(CodeTimeout, "other")) {
		t.Fatal("errors with different codes must not match")
	}
}

func TestFromUnwrapsNestedErrors(t *testing.T) {
	inner := New(CodeStorageFailure, "disk full")
	outer := fmt.Errorf("save record: %w", inner)

	e, ok := From(outer)
	if !ok {
		t.Fatal("expected to recover the unified error")
	}
	if e.Code() != CodeStorageFailure {
		t.Fatalf("unexpected code %s", e.Code())
	}
	if CodeOf(stdErrors.New("plain")) != CodeUnknown {
		t.Fatal("plain errors must map to UNKNOWN")
	}
}

func TestRegisterDrivesDefaults(t *testing.T) {
	const code Code = "TEST_ONLY_CODE"
	Register(code, Attributes{
		Message:   "test failure",
		Severity:  SeverityWarning,
		Retryable: true,
		Alert:     true,
	})

	err := New(code, "")
	if !err.Retryable() || !err.ShouldAlert() {
		t.Fatal("registered attributes must drive defaults")
	}
	if err.Severity() != SeverityWarning {
		t.Fatalf("unexpected severity %s", err.Severity())
	}
}

func TestOptionOverrides(t *testing.T) {
	err := New(CodeNotFound, "gone",
		WithRetryable(true),
		WithAlert(true),
		WithSeverity(SeverityCritical),
		WithMetadata("session_id", "abc"),
	)

	if !err.Retryable() || !err.ShouldAlert() || err.Severity() != SeverityCritical {
		t.Fatal("options must override registered defaults")
	}
	meta := err.Metadata()
	if meta["session_id"] != "abc" {
		t.Fatalf("unexpected metadata %v", meta)
	}

	// Metadata returns a copy.
	meta["session_id"] = "mutated"
	if err.Metadata()["session_id"] != "abc" {
		t.Fatal("metadata must not be externally mutable")
	}
}

func TestHelpersOnPlainErrors(t *testing.T) {
	plain := stdErrors.New("plain")
	if RetryableError(plain) {
		t.Fatal("plain errors are not retryable")
	}
	if SeverityOf(New(CodeStorageFailure, "")) != SeverityCritical {
		t.Fatal("expected critical severity for storage failures")
	}
}
