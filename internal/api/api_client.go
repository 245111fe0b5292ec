package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

type ApiClient struct {
	baseUrl string
	client  *http.Client
}

func NewApiClient(config ClientConfig) *ApiClient {
	dialer := &net.Dialer{
		Timeout:   config.Timeout,
		KeepAlive: config.KeepAlive,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		ForceAttemptHTTP2:     true,
	}

	return &ApiClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		baseUrl: config.BaseURL,
	}
}

// RequestOption adjusts a single outgoing request.
type RequestOption func(*http.Request)

func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *ApiClient) Get(ctx context.Context, path string, result interface{}, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodGet, path, nil, result, opts...)
}

func (c *ApiClient) Post(ctx context.Context, path string, payload, result interface{}, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodPost, path, payload, result, opts...)
}

// Request sends one JSON request. Non-2xx answers become *StatusError, transport
// failures become *TransportError.
func (c *ApiClient) Request(ctx context.Context, method, path string, payload, result interface{}, opts ...RequestOption) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	var written atomic.Bool
	trace := &httptrace.ClientTrace{
		WroteRequest: func(httptrace.WroteRequestInfo) { written.Store(true) },
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), method, c.baseUrl+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Written: written.Load(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Method: method, Path: path, Written: true, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func (c *ApiClient) Close() {
	c.client.CloseIdleConnections()
}

// StatusError is a non-2xx answer; Message carries the server's detail/message.
type StatusError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func newStatusError(code int, body []byte) *StatusError {
	var eb models.ErrorBody
	_ = json.Unmarshal(body, &eb)
	return &StatusError{StatusCode: code, Message: eb.Text(), Body: body}
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error: status=%d, message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: status=%d", e.StatusCode)
}

// TransportError is a failure without an HTTP answer. Written reports whether the
// request had been fully sent, in which case the server may have acted on it.
type TransportError struct {
	Method  string
	Path    string
	Written bool
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s %s failed: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAuthFailure reports a 401 or 403 answer.
func IsAuthFailure(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// Message returns the most user-presentable text of an api error.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Err.Error()
	}
	return err.Error()
}

func DefaultConfig() ClientConfig {
	return ClientConfig{
		Timeout:               30 * time.Second,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		KeepAlive:             30 * time.Second,
	}
}

type ClientConfig struct {
	BaseURL               string
	Timeout               time.Duration
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	KeepAlive             time.Duration
}
