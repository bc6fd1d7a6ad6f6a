package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for harness operations
var (
	// ErrSkipped marks a check that intentionally did not run
	ErrSkipped = errors.New("skipped")

	// ErrUnknownChain is returned when a chain key is not in the catalog
	ErrUnknownChain = errors.New("unknown chain")

	// ErrInvalidNetwork is returned when a CAIP-2 identifier cannot be used
	ErrInvalidNetwork = errors.New("invalid network identifier")

	// ErrProcessExited is returned when a server exits before becoming ready
	ErrProcessExited = errors.New("process exited")

	// ErrPortInUse is returned when another process already holds a server's port
	ErrPortInUse = errors.New("port already in use")

	// ErrNoPaymentRequirements is returned when a 402 response carries no usable requirement
	ErrNoPaymentRequirements = errors.New("no matching payment requirements")
)

// Skip wraps ErrSkipped with a reason.
func Skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrSkipped, reason)
}

// IsSkip reports whether err marks a skipped check.
func IsSkip(err error) bool {
	return errors.Is(err, ErrSkipped)
}

// ProvisioningError is a scaffold, install or environment failure for one sub-suite.
type ProvisioningError struct {
	Step  string
	Cause error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", e.Step, e.Cause)
}

func (e *ProvisioningError) Unwrap() error { return e.Cause }

// StartupError is returned when a server does not become ready in time.
type StartupError struct {
	Entrypoint string
	Port       int
	Elapsed    time.Duration
	Output     string
	Cause      error
}

func (e *StartupError) Error() string {
	msg := fmt.Sprintf("%s did not accept connections on port %d after %s", e.Entrypoint, e.Port, e.Elapsed.Round(time.Millisecond))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n--- output ---\n" + out
	}
	return msg
}

func (e *StartupError) Unwrap() error { return e.Cause }

// ProtocolViolation reports a response that does not match the expected surface.
type ProtocolViolation struct {
	Field    string
	Expected any
	Observed any
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("%s: expected %v, got %v", e.Field, e.Expected, e.Observed)
}

// Violation is a shorthand constructor for ProtocolViolation.
func Violation(field string, expected, observed any) error {
	return &ProtocolViolation{Field: field, Expected: expected, Observed: observed}
}

// UnknownChainError carries fuzzy suggestions for a mistyped chain key.
type UnknownChainError struct {
	Key         string
	Suggestions []string
}

func (e UnknownChainError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown chain %q", e.Key)
	}
	return fmt.Sprintf("unknown chain %q (did you mean %s?)", e.Key, strings.Join(e.Suggestions, ", "))
}

func (e UnknownChainError) Unwrap() error { return ErrUnknownChain }
