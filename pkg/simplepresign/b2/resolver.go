package b2

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIURL is the public Backblaze B2 API base URL.
const DefaultAPIURL = "https://api.backblazeb2.com"

const authorizePath = "/b2api/v2/b2_authorize_account"

// Authorization is the resolved output of an account authorization call:
// the S3-compatible endpoint host and the region token embedded in it.
type Authorization struct {
	Endpoint string // e.g. "s3.us-west-002.backblazeb2.com"
	Region   string // e.g. "us-west-002"
}

// authorizeAccountResponse holds the subset of the b2_authorize_account
// response the resolver needs.
type authorizeAccountResponse struct {
	S3APIURL string `json:"s3ApiUrl"`
}

// Resolver performs the account authorization round trip. Timeouts are the
// caller's business: pass a context with a deadline.
type Resolver struct {
	httpClient *http.Client
	apiURL     string
}

// Option is a functional option for configuring a Resolver
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithAPIURL overrides the B2 API base URL (used in tests and for proxies)
func WithAPIURL(apiURL string) Option {
	return func(r *Resolver) {
		if apiURL != "" {
			r.apiURL = strings.TrimSuffix(apiURL, "/")
		}
	}
}

// NewResolver creates a resolver against the public B2 API.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     DefaultAPIURL,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Authorize exchanges an account id and application key for the account's
// S3-compatible endpoint and region. Every failure mode (transport error,
// non-2xx status, malformed body, unusable s3ApiUrl) is reported as a
// *ResolutionError so callers have a single recoverable error to handle.
func (r *Resolver) Authorize(ctx context.Context, accountID, accountKey string) (Authorization, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiURL+authorizePath, nil)
	if err != nil {
		return Authorization{}, &ResolutionError{Op: "authorize", Err: err}
	}

	credentials := base64.URLEncoding.EncodeToString([]byte(accountID + ":" + accountKey))
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Authorization{}, &ResolutionError{Op: "authorize", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Authorization{}, &ResolutionError{Op: "authorize", Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var body authorizeAccountResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Authorization{}, &ResolutionError{Op: "authorize", Err: fmt.Errorf("decoding response: %w", err)}
	}

	return ResolveS3APIURL(body.S3APIURL)
}

// ResolveS3APIURL derives the endpoint host and region from an S3 API URL as
// returned by b2_authorize_account.
func ResolveS3APIURL(s3APIURL string) (Authorization, error) {
	u, err := url.Parse(s3APIURL)
	if err != nil {
		return Authorization{}, &ResolutionError{Op: "resolve endpoint", Err: err}
	}

	host := u.Hostname()
	if host == "" || net.ParseIP(host) != nil {
		return Authorization{}, &ResolutionError{Op: "resolve endpoint", Err: ErrNoDomain}
	}

	region, err := RegionFromHost(host)
	if err != nil {
		return Authorization{}, &ResolutionError{Op: "resolve endpoint", Err: err}
	}

	return Authorization{Endpoint: host, Region: region}, nil
}

// RegionFromHost extracts the region token from an S3 API hostname by taking
// its second dot-separated label: "s3.us-west-002.backblazeb2.com" yields
// "us-west-002".
func RegionFromHost(host string) (string, error) {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return "", ErrNoRegion
	}
	return labels[1], nil
}
