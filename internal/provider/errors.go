package provider

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the category sentinel for configuration failures.
// Both *ConfigurationError and *UnsupportedCapabilityError match it.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports an unusable provider selection: unknown kind,
// missing credentials, or no client registered for the kind.
type ConfigurationError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error: %s", e.Message)
	if e.Kind != "" {
		msg = fmt.Sprintf("configuration error (provider=%s): %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// UnsupportedCapabilityError reports that the configured provider kind cannot
// perform the requested capability at all. It is distinct from a provider
// that tried and returned no solution.
type UnsupportedCapabilityError struct {
	Kind       Kind
	Capability Capability
}

// Error implements the error interface.
func (e *UnsupportedCapabilityError) Error() string {
	return fmt.Sprintf("configuration error: provider %s cannot solve %s challenges", e.Kind, e.Capability)
}

// Is lets errors.Is(err, ErrConfiguration) match.
func (e *UnsupportedCapabilityError) Is(target error) bool { return target == ErrConfiguration }

// BalanceError reports a failed pre-flight balance check.
type BalanceError struct {
	Kind    Kind
	Balance float64
	Err     error
}

// Error implements the error interface.
func (e *BalanceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("balance check failed for provider %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("balance check failed for provider %s: balance %.4f is not positive", e.Kind, e.Balance)
}

func (e *BalanceError) Unwrap() error { return e.Err }

// IsConfigurationError returns true if err is or wraps a configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsUnsupportedCapability returns true if err is or wraps an
// UnsupportedCapabilityError.
func IsUnsupportedCapability(err error) bool {
	var uc *UnsupportedCapabilityError
	return errors.As(err, &uc)
}

// IsBalanceError returns true if err is or wraps a BalanceError.
func IsBalanceError(err error) bool {
	var be *BalanceError
	return errors.As(err, &be)
}
