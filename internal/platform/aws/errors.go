package aws

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/vpngw/vpngw/internal/errdefs"
)

// wrapErr converts an SDK error into a CloudAPIError carrying the
// provider's code and message.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &errdefs.CloudAPIError{
			Op:      op,
			Code:    apiErr.ErrorCode(),
			Message: apiErr.ErrorMessage(),
			Err:     err,
		}
	}
	return &errdefs.CloudAPIError{Op: op, Err: err}
}

func errCode(err error) string {
	if apiErr, ok := errdefs.AsCloudAPIError(err); ok {
		return apiErr.Code
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFoundCode reports whether err is the provider saying the resource
// does not exist (e.g. InvalidGroup.NotFound, InvalidKeyPair.NotFound).
func IsNotFoundCode(err error) bool {
	return strings.HasSuffix(errCode(err), ".NotFound")
}

// IsDuplicate reports whether err indicates a name conflict with an
// existing resource (e.g. InvalidGroup.Duplicate).
func IsDuplicate(err error) bool {
	return strings.HasSuffix(errCode(err), ".Duplicate")
}

// IsDependencyViolation reports whether a delete failed because another
// resource still references this one. Security group deletion hits this
// while the terminated instance's network interface drains.
func IsDependencyViolation(err error) bool {
	return errCode(err) == "DependencyViolation"
}

// transientCodes are provider-side conditions that resolve on their own.
var transientCodes = map[string]struct{}{
	"RequestLimitExceeded": {},
	"Throttling":           {},
	"ThrottlingException":  {},
	"ServiceUnavailable":   {},
	"Unavailable":          {},
	"InternalError":        {},
	"InternalFailure":      {},
}

// IsTransient reports whether the call is worth retrying unchanged.
func IsTransient(err error) bool {
	_, ok := transientCodes[errCode(err)]
	return ok
}
