package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseSize = 10 << 20

// ErrUnavailable wraps transport failures: the CMS could not be reached at all.
var ErrUnavailable = errors.New("cms unavailable")

// APIError is a non-2xx answer from the CMS.
type APIError struct {
	Status  int
	Name    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cms: HTTP %d", e.Status)
	}
	return fmt.Sprintf("cms: HTTP %d: %s", e.Status, e.Message)
}

// StatusOf returns the CMS status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a CMS 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// Config holds the CMS connection settings.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the CMS REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a CMS client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("cms"),
	}
}

type requestOptions struct {
	bearer  string
	noToken bool
	query   url.Values
}

// RequestOption customises a single request.
type RequestOption func(*requestOptions)

// WithBearer authenticates as a customer instead of with the API token.
func WithBearer(jwt string) RequestOption {
	return func(o *requestOptions) { o.bearer = jwt }
}

// WithoutToken sends the request unauthenticated.
func WithoutToken() RequestOption {
	return func(o *requestOptions) { o.noToken = true }
}

// WithQuery adds query parameters.
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

// Do sends body as JSON to path (relative to /api) and decodes the answer into out.
// A nil out discards the body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cms: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	respBody, err := c.send(ctx, method, path, reader, "application/json", opts)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("cms: failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Upload posts files to the media library and decodes the created entries into out.
func (c *Client) Upload(ctx context.Context, files []UploadFile, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("cms: failed to build upload: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("cms: failed to build upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cms: failed to build upload: %w", err)
	}

	respBody, err := c.send(ctx, http.MethodPost, "/upload", &buf, w.FormDataContentType(), nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("cms: failed to decode upload response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, opts []RequestOption) ([]byte, error) {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	target := c.baseURL + "/api" + path
	if len(o.query) > 0 {
		target += "?" + o.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("cms: failed to create request: %w", err)
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	switch {
	case o.bearer != "":
		req.Header.Set("Authorization", "Bearer "+o.bearer)
	case !o.noToken && c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("CMS request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cms: failed to read response: %w", err)
	}

	c.logger.Debug("CMS request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return nil, parseError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

func parseError(status int, body []byte) error {
	var payload struct {
		Error struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Name = payload.Error.Name
		apiErr.Message = payload.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
