package simplepresign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SigV4 literals. Every byte here is part of the wire contract: the verifier
// recomputes the canonical request and rejects the URL on any mismatch.
const (
	algorithm       = "AWS4-HMAC-SHA256"
	unsignedPayload = "UNSIGNED-PAYLOAD"
	serviceS3       = "s3"
	scopeTerminator = "aws4_request"
	signedHeaders   = "host"

	amzDateFormat   = "20060102T150405Z"
	shortDateFormat = "20060102"
)

// x-id operation literals, matching the aws-sdk-go-v2 presigner output.
const (
	opGetObject  = "GetObject"
	opPutObject  = "PutObject"
	opUploadPart = "UploadPart"
)

// Signer produces presigned URLs for a single set of credentials.
// It is stateless apart from its clock and safe for concurrent use.
type Signer struct {
	creds Credentials
	now   func() time.Time
}

// New creates a Signer for the given credentials.
func New(creds Credentials, opts ...Option) *Signer {
	s := &Signer{
		creds: creds,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Presign returns a signed URL for a single-object request.
func (s *Signer) Presign(req SignRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	operation := opGetObject
	if req.Method == http.MethodPut {
		operation = opPutObject
	}

	return s.presign(req.Method, operation, req.Bucket, req.Key, req.ExpirySeconds, nil, s.now().UTC())
}

// PresignGet returns a signed GET URL for bucket/key valid for
// expirySeconds from now.
func (s *Signer) PresignGet(bucket, key string, expirySeconds uint32) (string, error) {
	return s.Presign(SignRequest{Bucket: bucket, Key: key, Method: http.MethodGet, ExpirySeconds: expirySeconds})
}

// PresignPut returns a signed PUT URL for bucket/key valid for
// expirySeconds from now.
func (s *Signer) PresignPut(bucket, key string, expirySeconds uint32) (string, error) {
	return s.Presign(SignRequest{Bucket: bucket, Key: key, Method: http.MethodPut, ExpirySeconds: expirySeconds})
}

// PresignMultipartPut returns one signed PUT URL per part, in ascending
// part-number order. All parts share a single timestamp and credential scope;
// each part still gets a distinct signature because partNumber changes its
// canonical request. If any part fails the whole call fails (no partial
// sequences).
func (s *Signer) PresignMultipartPut(req MultipartSignRequest) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t := s.now().UTC()
	urls := make([]string, 0, req.Parts)
	for part := uint32(1); part <= req.Parts; part++ {
		extra := map[string]string{
			"partNumber": strconv.FormatUint(uint64(part), 10),
			"uploadId":   req.UploadID,
		}
		u, err := s.presign(http.MethodPut, opUploadPart, req.Bucket, req.Key, req.ExpirySeconds, extra, t)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}

	return urls, nil
}

// presign builds the unsigned URL, runs canonical request -> string to sign
// -> signature over it, and appends X-Amz-Signature as the final parameter.
func (s *Signer) presign(method, operation, bucket, key string, expiry uint32, extra map[string]string, t time.Time) (string, error) {
	if s.creds.Endpoint == "" {
		return "", ErrHostUnresolvable
	}

	amzDate := t.Format(amzDateFormat)
	shortDate := t.Format(shortDateFormat)
	scope := credentialScope(shortDate, s.creds.Region)

	// Encode() sorts parameters by name, which is exactly the order the
	// verifier uses when it recomputes the canonical query string.
	q := url.Values{}
	q.Set("X-Amz-Algorithm", algorithm)
	q.Set("X-Amz-Content-Sha256", unsignedPayload)
	q.Set("X-Amz-Credential", s.creds.AccountID+"/"+scope)
	q.Set("X-Amz-Date", amzDate)
	q.Set("X-Amz-Expires", strconv.FormatUint(uint64(expiry), 10))
	q.Set("X-Amz-Security-Token", s.creds.SessionToken)
	q.Set("X-Amz-SignedHeaders", signedHeaders)
	q.Set("x-id", operation)
	for k, v := range extra {
		q.Set(k, v)
	}

	unsigned := fmt.Sprintf("https://%s.%s/%s?%s", bucket, s.creds.Endpoint, key, q.Encode())

	canonical, err := canonicalRequest(method, key, unsigned)
	if err != nil {
		return "", err
	}
	sts := stringToSign(canonical, amzDate, scope)
	signature := s.signature(shortDate, sts)

	return unsigned + "&X-Amz-Signature=" + signature, nil
}

// canonicalRequest assembles the fixed-format string hashed during signing:
// verb, absolute path, canonical query, host header, signed-header list and
// the unsigned-payload placeholder, newline-joined. The query string is taken
// verbatim from the (already sorted and encoded) URL.
func canonicalRequest(method, key, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHostUnresolvable, err)
	}

	host := u.Hostname()
	if host == "" || net.ParseIP(host) != nil {
		return "", ErrHostUnresolvable
	}

	return strings.Join([]string{
		method,
		"/" + key,
		u.RawQuery,
		"host:" + host,
		"",
		signedHeaders,
		unsignedPayload,
	}, "\n"), nil
}

// stringToSign derives the signing input from a canonical request: algorithm,
// timestamp, credential scope and the hex SHA-256 of the canonical request.
func stringToSign(canonical, amzDate, scope string) string {
	sum := sha256.Sum256([]byte(canonical))
	return strings.Join([]string{
		algorithm,
		amzDate,
		scope,
		hex.EncodeToString(sum[:]),
	}, "\n")
}

// signature runs the final HMAC over the string to sign with the derived
// signing key and hex-encodes the result.
func (s *Signer) signature(shortDate, sts string) string {
	key := deriveKey(s.creds.AccountSecret, shortDate, s.creds.Region, serviceS3)
	return hex.EncodeToString(hmacSHA256(key, []byte(sts)))
}

// deriveKey implements the SigV4 key derivation chain:
//
//	kDate    = HMAC-SHA256("AWS4"+secret, date)
//	kRegion  = HMAC-SHA256(kDate, region)
//	kService = HMAC-SHA256(kRegion, service)
//	kSigning = HMAC-SHA256(kService, "aws4_request")
//
// No intermediate key outlives the call.
func deriveKey(secret, date, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(date))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte(scopeTerminator))
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func credentialScope(shortDate, region string) string {
	return fmt.Sprintf("%s/%s/%s/%s", shortDate, region, serviceS3, scopeTerminator)
}
