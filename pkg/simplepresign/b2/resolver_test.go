package b2

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionFromHost(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		want    string
		wantErr bool
	}{
		{name: "backblaze us-east", host: "s3.us-east-005.backblazeb2.com", want: "us-east-005"},
		{name: "backblaze us-west", host: "s3.us-west-002.backblazeb2.com", want: "us-west-002"},
		{name: "aws", host: "s3.amazonaws.com", want: "amazonaws"},
		{name: "single label", host: "localhost", wantErr: true},
		{name: "empty", host: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, err := RegionFromHost(tt.host)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoRegion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, region)
		})
	}
}

func TestAuthorize(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"accountId":"000111222333","s3ApiUrl":"https://s3.us-west-002.backblazeb2.com"}`))
	}))
	defer server.Close()

	resolver := NewResolver(WithAPIURL(server.URL))
	auth, err := resolver.Authorize(context.Background(), "000111222333", "K002secret")
	require.NoError(t, err)

	assert.Equal(t, "s3.us-west-002.backblazeb2.com", auth.Endpoint)
	assert.Equal(t, "us-west-002", auth.Region)
	assert.Equal(t, "/b2api/v2/b2_authorize_account", gotPath)

	expectedAuth := "Basic " + base64.URLEncoding.EncodeToString([]byte("000111222333:K002secret"))
	assert.Equal(t, expectedAuth, gotAuth)
}

func TestAuthorizeFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unauthorized status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"s3ApiUrl":`))
			},
		},
		{
			name: "s3 api url without domain",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"s3ApiUrl":"https://203.0.113.10"}`))
			},
		},
		{
			name: "s3 api host without region label",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"s3ApiUrl":"https://localhost"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			resolver := NewResolver(WithAPIURL(server.URL))
			_, err := resolver.Authorize(context.Background(), "id", "key")
			assert.True(t, IsResolutionError(err), "expected ResolutionError, got %v", err)
		})
	}
}

func TestAuthorizeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	resolver := NewResolver(WithAPIURL(server.URL))
	_, err := resolver.Authorize(context.Background(), "id", "key")
	assert.True(t, IsResolutionError(err))
}

func TestAuthorizeContextTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	resolver := NewResolver(WithAPIURL(server.URL))
	_, err := resolver.Authorize(ctx, "id", "key")
	assert.True(t, IsResolutionError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolveS3APIURL(t *testing.T) {
	auth, err := ResolveS3APIURL("https://s3.eu-central-003.backblazeb2.com")
	require.NoError(t, err)
	assert.Equal(t, Authorization{Endpoint: "s3.eu-central-003.backblazeb2.com", Region: "eu-central-003"}, auth)

	_, err = ResolveS3APIURL("://not-a-url")
	assert.True(t, IsResolutionError(err))
}
