package simplepresign

import "net/http"

// Credentials carries everything the Signer needs to produce a signature.
// Values are copied on construction and never mutated; it is safe (and cheap)
// to build a fresh Signer per signing call.
type Credentials struct {
	AccountID     string // access key id (B2: application key id)
	AccountSecret string // secret access key (B2: application key)
	Endpoint      string // resolved S3-compatible endpoint host, e.g. "s3.us-west-002.backblazeb2.com"
	Region        string // region token embedded in the endpoint host
	SessionToken  string // emitted as X-Amz-Security-Token
}

// SignRequest describes a single-object presign operation.
type SignRequest struct {
	Bucket        string
	Key           string // object path, not URL-encoded by the caller
	Method        string // http.MethodGet or http.MethodPut
	ExpirySeconds uint32 // emitted as X-Amz-Expires, unclamped
}

// Validate checks the request for input errors before any signing work.
func (r SignRequest) Validate() error {
	if r.Bucket == "" {
		return ErrMissingBucket
	}
	if r.Key == "" {
		return ErrMissingKey
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPut {
		return ErrUnsupportedMethod
	}
	if r.ExpirySeconds == 0 {
		return ErrInvalidExpiry
	}
	return nil
}

// MultipartSignRequest describes a multipart-upload presign operation.
// It yields exactly Parts URLs, numbered 1..Parts, all sharing one signing
// timestamp and credential scope.
type MultipartSignRequest struct {
	Bucket        string
	Key           string
	UploadID      string // upload session id from CreateMultipartUpload
	Parts         uint32
	ExpirySeconds uint32
}

// Validate checks the request for input errors before any signing work.
func (r MultipartSignRequest) Validate() error {
	if r.Bucket == "" {
		return ErrMissingBucket
	}
	if r.Key == "" {
		return ErrMissingKey
	}
	if r.UploadID == "" {
		return ErrMissingUploadID
	}
	if r.Parts == 0 {
		return ErrInvalidPartCount
	}
	if r.ExpirySeconds == 0 {
		return ErrInvalidExpiry
	}
	return nil
}
