package b2

import (
	"errors"
	"fmt"
)

// Resolution errors
var (
	// ErrNoDomain indicates the returned S3 API URL has no parseable domain
	ErrNoDomain = errors.New("b2: s3 api url has no resolvable domain")

	// ErrNoRegion indicates the endpoint host has too few labels to carry a region
	ErrNoRegion = errors.New("b2: cannot infer region from s3 api host")
)

// ResolutionError is the single recoverable error kind for endpoint
// resolution. Transport failures, bad statuses, malformed bodies and
// unusable URLs all end up here; Unwrap exposes the cause.
type ResolutionError struct {
	Op  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("b2: %s failed: %v", e.Op, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// IsResolutionError returns true if err is (or wraps) a ResolutionError.
func IsResolutionError(err error) bool {
	var resErr *ResolutionError
	return errors.As(err, &resErr)
}
