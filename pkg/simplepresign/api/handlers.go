package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-presign/pkg/simplepresign"
	"github.com/tendant/simple-presign/pkg/simplepresign/b2"
)

// Config carries server-side defaults for the presign endpoints. Per-request
// credentials in the body take precedence; a fixed Endpoint/Region pair
// bypasses the B2 authorization round trip entirely.
type Config struct {
	AccountID    string
	AccountKey   string
	SessionToken string

	// Optional fixed endpoint/region; both must be set to take effect.
	Endpoint string
	Region   string

	DefaultExpirySeconds uint32
}

// Handler exposes presigned URL generation over HTTP
type Handler struct {
	cfg      Config
	resolver *b2.Resolver
	logger   *slog.Logger
}

// NewHandler creates a presign API handler
func NewHandler(cfg Config, resolver *b2.Resolver, logger *slog.Logger) *Handler {
	if resolver == nil {
		resolver = b2.NewResolver()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:      cfg,
		resolver: resolver,
		logger:   logger,
	}
}

// Routes returns the router for presign endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/get", h.PresignGet)
	r.Post("/put", h.PresignPut)
	r.Post("/multipart", h.PresignMultipart)
	return r
}

// PresignRequest is the request body for single-object presign endpoints
type PresignRequest struct {
	Bucket        string `json:"bucket"`
	Key           string `json:"key"`
	ExpirySeconds uint32 `json:"expiry_seconds,omitempty"`

	// Optional per-request credentials, overriding server defaults
	AccountID    string `json:"account_id,omitempty"`
	AccountKey   string `json:"account_key,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
}

// MultipartPresignRequest is the request body for the multipart endpoint
type MultipartPresignRequest struct {
	PresignRequest
	UploadID string `json:"upload_id"`
	Parts    uint32 `json:"parts"`
}

// PresignResponse is the response for single-object presign endpoints
type PresignResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MultipartPresignResponse is the response for the multipart endpoint.
// URLs are in ascending part-number order, one per part.
type MultipartPresignResponse struct {
	URLs      []string  `json:"urls"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PresignGet generates a presigned download URL
func (h *Handler) PresignGet(w http.ResponseWriter, r *http.Request) {
	h.presignObject(w, r, http.MethodGet)
}

// PresignPut generates a presigned upload URL
func (h *Handler) PresignPut(w http.ResponseWriter, r *http.Request) {
	h.presignObject(w, r, http.MethodPut)
}

func (h *Handler) presignObject(w http.ResponseWriter, r *http.Request, method string) {
	var req PresignRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", "failed to decode request body")
		return
	}

	signer, now, ok := h.signerFor(w, r, &req)
	if !ok {
		return
	}

	expiry := h.expiryFor(&req)
	signed, err := signer.Presign(simplepresign.SignRequest{
		Bucket:        req.Bucket,
		Key:           req.Key,
		Method:        method,
		ExpirySeconds: expiry,
	})
	if err != nil {
		h.writeSigningError(w, r, err)
		return
	}

	render.JSON(w, r, PresignResponse{
		URL:       signed,
		ExpiresAt: now.Add(time.Duration(expiry) * time.Second),
	})
}

// PresignMultipart generates one presigned upload URL per part of an
// existing multipart upload
func (h *Handler) PresignMultipart(w http.ResponseWriter, r *http.Request) {
	var req MultipartPresignRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", "failed to decode request body")
		return
	}

	signer, now, ok := h.signerFor(w, r, &req.PresignRequest)
	if !ok {
		return
	}

	expiry := h.expiryFor(&req.PresignRequest)
	urls, err := signer.PresignMultipartPut(simplepresign.MultipartSignRequest{
		Bucket:        req.Bucket,
		Key:           req.Key,
		UploadID:      req.UploadID,
		Parts:         req.Parts,
		ExpirySeconds: expiry,
	})
	if err != nil {
		h.writeSigningError(w, r, err)
		return
	}

	render.JSON(w, r, MultipartPresignResponse{
		URLs:      urls,
		ExpiresAt: now.Add(time.Duration(expiry) * time.Second),
	})
}

// signerFor resolves credentials and endpoint for one request and returns a
// signer pinned to a single timestamp, so the reported expires_at matches the
// signed X-Amz-Date exactly. Returns ok=false after writing an error response.
func (h *Handler) signerFor(w http.ResponseWriter, r *http.Request, req *PresignRequest) (*simplepresign.Signer, time.Time, bool) {
	accountID, accountKey, sessionToken := req.AccountID, req.AccountKey, req.SessionToken
	if accountID == "" {
		accountID, accountKey = h.cfg.AccountID, h.cfg.AccountKey
		if sessionToken == "" {
			sessionToken = h.cfg.SessionToken
		}
	}
	if accountID == "" || accountKey == "" {
		writeError(w, r, http.StatusBadRequest, "missing_credentials", "no account credentials in request or server configuration")
		return nil, time.Time{}, false
	}

	endpoint, region := h.cfg.Endpoint, h.cfg.Region
	if endpoint == "" || region == "" {
		auth, err := h.resolver.Authorize(r.Context(), accountID, accountKey)
		if err != nil {
			h.logger.Error("endpoint resolution failed", "error", err)
			writeError(w, r, http.StatusBadGateway, "resolution_failed", err.Error())
			return nil, time.Time{}, false
		}
		endpoint, region = auth.Endpoint, auth.Region
	}

	now := time.Now().UTC()
	signer := simplepresign.New(simplepresign.Credentials{
		AccountID:     accountID,
		AccountSecret: accountKey,
		Endpoint:      endpoint,
		Region:        region,
		SessionToken:  sessionToken,
	}, simplepresign.WithClock(func() time.Time { return now }))

	return signer, now, true
}

func (h *Handler) expiryFor(req *PresignRequest) uint32 {
	if req.ExpirySeconds > 0 {
		return req.ExpirySeconds
	}
	return h.cfg.DefaultExpirySeconds
}

func (h *Handler) writeSigningError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case b2.IsResolutionError(err):
		writeError(w, r, http.StatusBadGateway, "resolution_failed", err.Error())
	case simplepresign.IsInputError(err):
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, simplepresign.ErrHostUnresolvable):
		writeError(w, r, http.StatusBadGateway, "host_unresolvable", err.Error())
	default:
		h.logger.Error("presign failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "presign_failed", "failed to generate presigned URL")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

// HealthCheck responds to liveness probes
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
