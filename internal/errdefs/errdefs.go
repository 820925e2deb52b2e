// Package errdefs defines the error taxonomy shared by the lifecycle
// controller and its leaf components.
//
// Leaf packages (cloud gateway, remote configurator) raise these typed
// errors; the controller is the only layer that decides retry vs. abort
// vs. cleanup-then-abort based on them.
package errdefs

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrNotFound indicates a referenced cloud resource (network, image,
	// instance) does not exist. Fatal, never retried.
	ErrNotFound = errors.New("resource not found")

	// ErrProvisioningTimeout indicates a polling bound was exceeded.
	// Triggers cleanup of everything created so far.
	ErrProvisioningTimeout = errors.New("provisioning timed out")

	// ErrUnreachableHost indicates the remote host could not be reached
	// within the dial timeout.
	ErrUnreachableHost = errors.New("host unreachable")
)

// NotFound wraps err (or creates a new error from format args) so that
// errors.Is(err, ErrNotFound) holds.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// CloudAPIError carries the provider-side error code and message of a
// failed cloud API call. Whether the failure is transient is decided by
// the caller, not here.
type CloudAPIError struct {
	Op      string // gateway operation, e.g. "CreateSecurityGroup"
	Code    string // provider error code, e.g. "InvalidGroup.NotFound"
	Message string
	Err     error
}

func (e *CloudAPIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CloudAPIError) Unwrap() error { return e.Err }

// AsCloudAPIError returns the wrapped CloudAPIError, if any.
func AsCloudAPIError(err error) (*CloudAPIError, bool) {
	var apiErr *CloudAPIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// ProvisioningError indicates a local precondition failed, e.g. the
// private key file could not be persisted. Fails fast, never retried.
type ProvisioningError struct {
	Step string
	Err  error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", e.Step, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// ConfigurationError indicates remote setup or verification failed on an
// otherwise reachable instance. Retried a bounded number of times by the
// controller, then fatal. Output holds whatever the remote side printed.
type ConfigurationError struct {
	Host   string
	Output string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("configuration of %s failed: %v\noutput: %s", e.Host, e.Err, e.Output)
	}
	return fmt.Sprintf("configuration of %s failed: %v", e.Host, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
