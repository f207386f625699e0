package simplepresign

import "errors"

// Signing errors
var (
	// ErrHostUnresolvable indicates the target URL has no parseable domain,
	// so no canonical request (and therefore no signature) can be produced.
	ErrHostUnresolvable = errors.New("simplepresign: endpoint host is not a resolvable domain")

	// ErrMissingBucket indicates an empty bucket name
	ErrMissingBucket = errors.New("simplepresign: bucket is required")

	// ErrMissingKey indicates an empty object key
	ErrMissingKey = errors.New("simplepresign: object key is required")

	// ErrMissingUploadID indicates an empty multipart upload id
	ErrMissingUploadID = errors.New("simplepresign: upload id is required")

	// ErrUnsupportedMethod indicates a verb other than GET or PUT
	ErrUnsupportedMethod = errors.New("simplepresign: method must be GET or PUT")

	// ErrInvalidExpiry indicates a zero expiry
	ErrInvalidExpiry = errors.New("simplepresign: expiry must be positive")

	// ErrInvalidPartCount indicates a zero part count
	ErrInvalidPartCount = errors.New("simplepresign: part count must be at least 1")
)

// IsInputError returns true if the error is caused by malformed caller input
// rather than by endpoint resolution or signing itself.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingBucket) ||
		errors.Is(err, ErrMissingKey) ||
		errors.Is(err, ErrMissingUploadID) ||
		errors.Is(err, ErrUnsupportedMethod) ||
		errors.Is(err, ErrInvalidExpiry) ||
		errors.Is(err, ErrInvalidPartCount)
}
