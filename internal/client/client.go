package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/molgenis/commander/internal/config"
)

// ExpiredFunc decides whether a failed response means the session token is
// invalid or expired. The upstream contract for this is loose, so the
// predicate is pluggable instead of hard-coded.
type ExpiredFunc func(status int, contentType string, body []byte) bool

// Client wraps REST access to a MOLGENIS server. Every outbound call goes
// through the same pipeline: inject headers, execute, detect an expired
// session (one re-login and one retry at most), decode structured errors.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	auth       *Auth
	logger     *slog.Logger
	expired    ExpiredFunc
}

// Option customizes a Client.
type Option func(*Client)

// WithExpiredFunc replaces the expired-session predicate.
func WithExpiredFunc(fn ExpiredFunc) Option {
	return func(c *Client) { c.expired = fn }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.auth.httpClient = hc
	}
}

// New creates a client from the resolved configuration.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if _, err := url.Parse(cfg.Host.URL); err != nil {
		return nil, fmt.Errorf("client: parse host url: %w", err)
	}
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
	}
	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		auth:       NewAuth(cfg.EndpointURL(cfg.API.Login), cfg.Auth.Username, cfg.Auth.Password, httpClient, logger),
		logger:     logger,
		expired:    DefaultExpired,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Auth exposes the authenticator, mainly so callers can log in eagerly.
func (c *Client) Auth() *Auth { return c.auth }

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Errors       []apiError `json:"errors"`
	ErrorMessage string     `json:"errorMessage"`
}

// DefaultExpired reports an expired session when the server answers 401 with
// the structured "No 'Read metadata' permission" error (code DS04). There is
// no direct way to ask whether a token is still valid; this error is the
// closest reactive signal the API gives.
func DefaultExpired(status int, contentType string, body []byte) bool {
	if status != http.StatusUnauthorized || !strings.Contains(contentType, "application/json") {
		return false
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Errors) == 0 {
		return false
	}
	first := envelope.Errors[0]
	return first.Code == "DS04" && strings.HasPrefix(first.Message, "No 'Read metadata' permission")
}

// call describes one outbound request. The body is buffered so the call can
// be replayed once after a re-login.
type call struct {
	method      string
	url         string
	query       url.Values
	body        []byte
	contentType string
}

// execute runs the request pipeline. The loop is bounded: at most one
// re-login and one replay per call, never more.
func (c *Client) execute(ctx context.Context, op call) ([]byte, error) {
	target := op.url
	if len(op.query) > 0 {
		target += "?" + op.query.Encode()
	}

	relogged := false
	for {
		req, err := http.NewRequestWithContext(ctx, op.method, target, bytes.NewReader(op.body))
		if err != nil {
			return nil, &RequestError{Err: err}
		}
		if op.contentType != "" {
			req.Header.Set("Content-Type", op.contentType)
		}
		req.Header.Set("x-molgenis-token", c.auth.Token())

		c.logger.Debug("request", "method", op.method, "url", target)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &RequestError{Err: err}
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &RequestError{Err: err}
		}

		if resp.StatusCode < http.StatusMultipleChoices {
			return body, nil
		}

		contentType := resp.Header.Get("Content-Type")
		if !relogged && c.expired(resp.StatusCode, contentType, body) {
			relogged = true
			c.logger.Debug("session expired, logging in again")
			if err := c.auth.Login(ctx); err != nil {
				return nil, err
			}
			continue
		}

		return nil, decodeError(resp.StatusCode, contentType, body)
	}
}

func decodeError(status int, contentType string, body []byte) error {
	if strings.Contains(contentType, "application/json") {
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil {
			if len(envelope.Errors) > 0 {
				messages := make([]string, 0, len(envelope.Errors))
				for _, apiErr := range envelope.Errors {
					messages = append(messages, apiErr.Message)
				}
				return &DomainError{Messages: messages}
			}
			if envelope.ErrorMessage != "" {
				return &DomainError{Messages: []string{envelope.ErrorMessage}}
			}
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = http.StatusText(status)
	}
	return &DomainError{Messages: []string{fmt.Sprintf("HTTP %d: %s", status, text)}}
}

// Get performs a GET and decodes the JSON response into out when non-nil.
func (c *Client) Get(ctx context.Context, rawURL string, out any) error {
	body, err := c.execute(ctx, call{
		method:      http.MethodGet,
		url:         rawURL,
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

// Post sends in as a JSON body and decodes the response into out when non-nil.
func (c *Client) Post(ctx context.Context, rawURL string, in, out any) error {
	body, err := encodeJSON(in)
	if err != nil {
		return err
	}
	respBody, err := c.execute(ctx, call{
		method:      http.MethodPost,
		url:         rawURL,
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	return decodeInto(respBody, out)
}

// Put sends in as a JSON body.
func (c *Client) Put(ctx context.Context, rawURL string, in any) error {
	body, err := encodeJSON(in)
	if err != nil {
		return err
	}
	_, err = c.execute(ctx, call{
		method:      http.MethodPut,
		url:         rawURL,
		body:        body,
		contentType: "application/json",
	})
	return err
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, rawURL string) error {
	_, err := c.execute(ctx, call{
		method:      http.MethodDelete,
		url:         rawURL,
		contentType: "application/json",
	})
	return err
}

// DeleteData deletes a batch of rows by id.
func (c *Client) DeleteData(ctx context.Context, rawURL string, ids []string) error {
	body, err := encodeJSON(map[string][]string{"entityIds": ids})
	if err != nil {
		return err
	}
	_, err = c.execute(ctx, call{
		method:      http.MethodDelete,
		url:         rawURL,
		body:        body,
		contentType: "application/json",
	})
	return err
}

// PostForm sends a urlencoded form body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) error {
	_, err := c.execute(ctx, call{
		method:      http.MethodPost,
		url:         rawURL,
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded; charset=UTF-8",
	})
	return err
}

// PostFile uploads one file as a multipart body, with extra query parameters.
func (c *Client) PostFile(ctx context.Context, rawURL, filePath string, params url.Values) error {
	body, contentType, err := multipartBody(map[string]string{"file": filePath})
	if err != nil {
		return err
	}
	_, err = c.execute(ctx, call{
		method:      http.MethodPost,
		url:         rawURL,
		query:       params,
		body:        body,
		contentType: contentType,
	})
	return err
}

// PostFiles uploads several files keyed by form field name.
func (c *Client) PostFiles(ctx context.Context, rawURL string, files map[string]string) error {
	body, contentType, err := multipartBody(files)
	if err != nil {
		return err
	}
	_, err = c.execute(ctx, call{
		method:      http.MethodPost,
		url:         rawURL,
		body:        body,
		contentType: contentType,
	})
	return err
}

func encodeJSON(in any) ([]byte, error) {
	if in == nil {
		return nil, nil
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("client: encode body: %w", err)
	}
	return body, nil
}

func decodeInto(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// multipartBody buffers a multipart payload up front so it can be replayed on
// the re-login retry.
func multipartBody(files map[string]string) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, path := range files {
		file, err := os.Open(path)
		if err != nil {
			return nil, "", &RequestError{Err: err}
		}
		part, err := writer.CreateFormFile(field, filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		file.Close()
		if err != nil {
			return nil, "", &RequestError{Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", &RequestError{Err: err}
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
