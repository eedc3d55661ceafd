// internal/adapters/out/http/client.go
package httpout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultBaseURL is the storefront backend root used in development.
const DefaultBaseURL = "http://localhost:8080/doan"

// maxErrorBody bounds how much of an error response we read.
const maxErrorBody = 1 << 20

// APIError is a non-2xx backend response.
// Code/Message come from the backend's {code, message} error envelope when present.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status=%d code=%d: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend status=%d code=%d", e.Status, e.Code)
}

// Client is the shared transport for the backend REST API.
// No retries: a failed call is reported and the caller decides.
type Client struct {
	baseURL string
	client  *http.Client
}

// baseURL example:
// - local: http://localhost:8080/doan
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP is useful for tests (httptest.Server.Client()).
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	c := NewClient(baseURL, 0)
	if hc != nil {
		c.client = hc
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// AssetURL resolves a backend-relative asset path.
func (c *Client) AssetURL(p, fallback string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return fallback
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return c.baseURL + p
}

// do sends a JSON request. body may be nil; out may be nil (response discarded)
// or *string (raw body).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	if c == nil || c.client == nil {
		return errors.New("httpout: client is nil")
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "httpout: encode request")
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return errors.Wrap(err, "httpout: build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := strings.TrimSpace(token); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "httpout: %s %s", method, path)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeAPIError(res)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	if s, ok := out.(*string); ok {
		b, err := io.ReadAll(res.Body)
		if err != nil {
			return errors.Wrap(err, "httpout: read response")
		}
		*s = string(b)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil && err != io.EOF {
		return errors.Wrapf(err, "httpout: decode %s %s", method, path)
	}
	return nil
}

func decodeAPIError(res *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	apiErr := &APIError{Status: res.StatusCode}

	var env struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &env); err == nil {
		apiErr.Code = env.Code
		apiErr.Message = strings.TrimSpace(env.Message)
	} else {
		apiErr.Message = strings.TrimSpace(string(b))
	}
	return apiErr
}

// envelope is the backend's {code, message, result} wrapper.
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}
