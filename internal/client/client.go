// Package client is a Go client for the blog API. It wraps each endpoint in
// a typed service, carries the signed-in session through the request
// context and mirrors server results in a local PostFeed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
)

// DefaultBaseURL is used when Config.BaseURL is empty.
const DefaultBaseURL = "http://localhost:5000/api"

// Config configures a Client.
type Config struct {
	// BaseURL is the server address. "/api" is appended when missing.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// Client performs JSON requests against the API.
type Client struct {
	mu   sync.RWMutex
	base *url.URL

	http *http.Client
	log  logrus.FieldLogger
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Message string
	Fields  []apperr.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Client{base: base, http: cfg.HTTPClient, log: cfg.Logger}, nil
}

// BaseURL returns the current API root, always ending in "/api".
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base.String()
}

// Posts returns the post endpoints.
func (c *Client) Posts() *PostService { return &PostService{c: c} }

// Categories returns the category endpoints.
func (c *Client) Categories() *CategoryService { return &CategoryService{c: c} }

// Auth returns the account endpoints.
func (c *Client) Auth() *AuthService { return &AuthService{c: c} }

// DiscoverPort asks a local server which port it actually bound and
// retargets the client when it differs. Remote hosts are left alone.
func (c *Client) DiscoverPort(ctx context.Context) error {
	c.mu.RLock()
	host := c.base.Hostname()
	c.mu.RUnlock()
	if host != "localhost" && host != "127.0.0.1" {
		return nil
	}

	var info struct {
		Port int `json:"port"`
	}
	if err := c.do(ctx, http.MethodGet, "/server-info", nil, nil, &info); err != nil {
		c.log.WithError(err).Warn("could not check server port")
		return err
	}
	if info.Port <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base.Port() != strconv.Itoa(info.Port) {
		c.base.Host = net.JoinHostPort(c.base.Hostname(), strconv.Itoa(info.Port))
		c.log.WithField("base", c.base.String()).Info("switched to discovered server port")
	}
	return nil
}

// do sends one request. in is encoded as the JSON body when non-nil and a
// successful response is decoded into out when non-nil. The bearer token
// comes from the session in ctx, and a 401 clears that session.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client marshal: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("client request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	session := SessionFrom(ctx)
	if token := session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusUnauthorized && session.Token() != "" {
			if err := session.Clear(); err != nil {
				c.log.WithError(err).Warn("failed to clear session")
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("client unmarshal: %w", err)
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	c.mu.RLock()
	u := *c.base
	c.mu.RUnlock()

	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String()
}

// decodeError reads the error envelope, falling back to a bare "message"
// field or the status text.
func decodeError(status int, body []byte) *APIError {
	var env struct {
		Error   string              `json:"error"`
		Message string              `json:"message"`
		Errors  []apperr.FieldError `json:"errors"`
	}
	_ = json.Unmarshal(body, &env)

	msg := env.Error
	if msg == "" {
		msg = env.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg, Fields: env.Errors}
}

// normalizeBaseURL makes raw an absolute URL whose path ends in "/api".
func normalizeBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", raw)
	}

	p := strings.TrimRight(u.Path, "/")
	if !strings.HasSuffix(p, "/api") {
		p += "/api"
	}
	u.Path = p
	u.RawQuery, u.Fragment = "", ""
	return u, nil
}
