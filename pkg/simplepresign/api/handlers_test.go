package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-presign/pkg/simplepresign/b2"
)

func testConfig() Config {
	return Config{
		AccountID:            "AKIDEXAMPLE",
		AccountKey:           "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		SessionToken:         "session-claqbxlfv0000ix0lx6inf7sd",
		Endpoint:             "s3.us-west-002.backblazeb2.com",
		Region:               "us-west-002",
		DefaultExpirySeconds: 3600,
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPresignPutEndpoint(t *testing.T) {
	h := NewHandler(testConfig(), nil, nil)

	rec := postJSON(t, h.Routes(), "/put", PresignRequest{
		Bucket:        "example-bucket",
		Key:           "my-movie.m2ts",
		ExpirySeconds: 600,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PresignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	u, err := url.Parse(resp.URL)
	require.NoError(t, err)
	assert.Equal(t, "example-bucket.s3.us-west-002.backblazeb2.com", u.Host)

	q := u.Query()
	assert.Equal(t, "AWS4-HMAC-SHA256", q.Get("X-Amz-Algorithm"))
	assert.Equal(t, "600", q.Get("X-Amz-Expires"))
	assert.Equal(t, "PutObject", q.Get("x-id"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
	assert.False(t, resp.ExpiresAt.IsZero())
}

func TestPresignGetEndpointDefaultExpiry(t *testing.T) {
	h := NewHandler(testConfig(), nil, nil)

	rec := postJSON(t, h.Routes(), "/get", PresignRequest{
		Bucket: "example-bucket",
		Key:    "photos/cat.jpg",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PresignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	u, err := url.Parse(resp.URL)
	require.NoError(t, err)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, "GetObject", u.Query().Get("x-id"))
}

func TestPresignMultipartEndpoint(t *testing.T) {
	const parts = 4
	h := NewHandler(testConfig(), nil, nil)

	rec := postJSON(t, h.Routes(), "/multipart", MultipartPresignRequest{
		PresignRequest: PresignRequest{
			Bucket:        "example-bucket",
			Key:           "my-movie.m2ts",
			ExpirySeconds: 600,
		},
		UploadID: "upload-123",
		Parts:    parts,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MultipartPresignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.URLs, parts)

	for i, raw := range resp.URLs {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(i+1), u.Query().Get("partNumber"))
		assert.Equal(t, "upload-123", u.Query().Get("uploadId"))
		assert.Equal(t, "UploadPart", u.Query().Get("x-id"))
	}
}

func TestPresignEndpointErrors(t *testing.T) {
	h := NewHandler(testConfig(), nil, nil)

	tests := []struct {
		name string
		path string
		body interface{}
		code int
	}{
		{
			name: "zero parts",
			path: "/multipart",
			body: MultipartPresignRequest{
				PresignRequest: PresignRequest{Bucket: "b", Key: "k", ExpirySeconds: 600},
				UploadID:       "u",
			},
			code: http.StatusBadRequest,
		},
		{
			name: "missing bucket",
			path: "/put",
			body: PresignRequest{Key: "k", ExpirySeconds: 600},
			code: http.StatusBadRequest,
		},
		{
			name: "missing key",
			path: "/get",
			body: PresignRequest{Bucket: "b", ExpirySeconds: 600},
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Routes(), tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code)

			var resp map[string]map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"]["code"])
		})
	}
}

func TestPresignEndpointInvalidJSON(t *testing.T) {
	h := NewHandler(testConfig(), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/put", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresignEndpointMissingCredentials(t *testing.T) {
	h := NewHandler(Config{DefaultExpirySeconds: 3600}, nil, nil)

	rec := postJSON(t, h.Routes(), "/put", PresignRequest{Bucket: "b", Key: "k"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_credentials")
}

func TestPresignEndpointResolutionFailure(t *testing.T) {
	// No fixed endpoint: the handler must authorize against B2, which here is
	// an immediately-closed server, and surface the failure as 502.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	cfg := testConfig()
	cfg.Endpoint = ""
	cfg.Region = ""
	h := NewHandler(cfg, b2.NewResolver(b2.WithAPIURL(upstream.URL)), nil)

	rec := postJSON(t, h.Routes(), "/put", PresignRequest{Bucket: "b", Key: "k", ExpirySeconds: 60})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "resolution_failed")
}

func TestPresignEndpointResolvesViaB2(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s3ApiUrl":"https://s3.eu-central-003.backblazeb2.com"}`))
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.Endpoint = ""
	cfg.Region = ""
	h := NewHandler(cfg, b2.NewResolver(b2.WithAPIURL(upstream.URL)), nil)

	rec := postJSON(t, h.Routes(), "/get", PresignRequest{Bucket: "example-bucket", Key: "k", ExpirySeconds: 60})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PresignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	u, err := url.Parse(resp.URL)
	require.NoError(t, err)
	assert.Equal(t, "example-bucket.s3.eu-central-003.backblazeb2.com", u.Host)
	assert.Contains(t, u.Query().Get("X-Amz-Credential"), "/eu-central-003/s3/aws4_request")
}
