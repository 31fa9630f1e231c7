package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/logging"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

const (
	// RequestIDHeader carries the id the client logs for each request.
	RequestIDHeader = "X-Request-Id"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the absolute URL every request path is resolved against.
	BaseURL string
	// Transport is used for the requests. Nil means [http.DefaultTransport].
	Transport http.RoundTripper
	// AllowInsecureCookies accepts Secure cookies over plain http, useful for local development servers.
	AllowInsecureCookies bool
}

// Response is a fully read HTTP response.
type Response struct {
	Method     string
	StatusCode int
	Header     http.Header
	Body       []byte
	// URL is the final request URL after redirects.
	URL *url.URL
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "decode response body", slog.Int("status", r.StatusCode))
	}
	return nil
}

// ResponseInterceptor observes every response passing through the Client. err is nil for 2xx responses, a status
// error from the taxonomy for other responses and a *NetworkError when resp is nil. The returned error is what the
// caller receives.
type ResponseInterceptor func(ctx context.Context, resp *Response, err error) error

type interceptorEntry struct {
	id int
	fn ResponseInterceptor
}

// Client is a cookie-carrying JSON API client bound to one base URL.
//
// Default headers and interceptors are shared by every caller of the same Client, so a header installed once,
// such as the CSRF token, goes out with every following request.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	jar     http.CookieJar
	logger  *slog.Logger

	mu           sync.RWMutex
	header       http.Header
	interceptors []interceptorEntry
	nextID       int
}

// New creates a Client from cfg.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL", slog.String("baseURL", cfg.BaseURL))
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.Wrap(ErrInvalidBaseURL, "validate base URL", slog.String("baseURL", cfg.BaseURL))
	}

	jar, err := newCookieJar(cfg.AllowInsecureCookies)
	if err != nil {
		return nil, errors.Wrap(err, "create cookie jar")
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-Requested-With", "XMLHttpRequest")

	return &Client{
		http:         &http.Client{Jar: jar, Transport: transport},
		baseURL:      baseURL,
		jar:          jar,
		logger:       logger,
		mu:           sync.RWMutex{},
		header:       header,
		interceptors: nil,
		nextID:       0,
	}, nil
}

// BaseURL returns a copy of the base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// SetHeader sets a default header sent with every following request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.header.Set(key, value)
}

// DelHeader removes a default header.
func (c *Client) DelHeader(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.header.Del(key)
}

// Header returns the current value of a default header.
func (c *Client) Header(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.header.Get(key)
}

// Cookie returns the value of the named cookie the jar would send to the base URL.
func (c *Client) Cookie(name string) (string, bool) {
	for _, cookie := range c.jar.Cookies(c.baseURL) {
		if cookie.Name == name {
			return cookie.Value, true
		}
	}
	return "", false
}

// Use registers an interceptor for every following response. The returned function removes it again.
func (c *Client) Use(fn ResponseInterceptor) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.interceptors = append(c.interceptors, interceptorEntry{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, entry := range c.interceptors {
			if entry.id == id {
				c.interceptors = append(c.interceptors[:i:i], c.interceptors[i+1:]...)
				return
			}
		}
	}
}

// Get sends a GET request to path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post sends body as JSON to path. A nil body sends no payload.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Do sends a request to path, resolved against the base URL, and returns the response once the interceptors have
// seen it. Non-2xx responses are returned as errors from the taxonomy: *AuthError, *ValidationError, *ServerError;
// a failure to get any response is a *NetworkError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolve path", slog.String("path", path))
	}

	var reader io.Reader
	if body != nil {
		var payload []byte
		if payload, err = json.Marshal(body); err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	var req *http.Request
	if req, err = http.NewRequestWithContext(ctx, method, target.String(), reader); err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	c.mu.RLock()
	for key, values := range c.header {
		req.Header[key] = append([]string(nil), values...)
	}
	c.mu.RUnlock()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	ctx = logging.WithAttrs(ctx,
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", target.Path),
	)
	c.logger.LogAttrs(ctx, slog.LevelDebug, "sending request")

	var resp *http.Response
	if resp, err = c.http.Do(req); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelDebug, "request failed", errors.SlogError(err))
		return c.intercept(ctx, nil, &NetworkError{Method: method, URL: target, Err: err})
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var payload []byte
	if payload, err = io.ReadAll(resp.Body); err != nil {
		return c.intercept(ctx, nil, &NetworkError{Method: method, URL: target, Err: err})
	}

	response := &Response{
		Method:     method,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       payload,
		URL:        resp.Request.URL,
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "received response", slog.Int("status", resp.StatusCode))

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return c.intercept(ctx, response, nil)
	}
	return c.intercept(ctx, response, newStatusError(response))
}

// intercept runs the registered interceptors in registration order.
func (c *Client) intercept(ctx context.Context, resp *Response, err error) (*Response, error) {
	c.mu.RLock()
	interceptors := make([]ResponseInterceptor, 0, len(c.interceptors))
	for _, entry := range c.interceptors {
		interceptors = append(interceptors, entry.fn)
	}
	c.mu.RUnlock()

	for _, fn := range interceptors {
		err = fn(ctx, resp, err)
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrNoResponse
	}
	return resp, nil
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, errors.Wrap(err, "parse path")
	}
	if ref.IsAbs() {
		return ref, nil
	}
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawPath = ""
	u.RawQuery = ref.RawQuery
	u.Fragment = ""
	return &u, nil
}

// Get sends a GET request and decodes the JSON response into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	resp, err := c.Get(ctx, path)
	if err != nil {
		return out, err
	}
	if err = resp.Decode(&out); err != nil {
		return out, errors.Wrap(err, "decode", slog.String("path", path))
	}
	return out, nil
}

// Post sends body as JSON and decodes the JSON response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return out, err
	}
	if err = resp.Decode(&out); err != nil {
		return out, errors.Wrap(err, "decode", slog.String("path", path))
	}
	return out, nil
}
