package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storechat/internal/logging"
	"storechat/internal/types"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4096
)

type Client struct {
	baseURL     string
	credentials CredentialSource
	http        *http.Client
	logger      logging.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout, Transport: c.http.Transport}
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, credentials CredentialSource, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     baseURL,
		credentials: credentials,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func NewWithToken(baseURL, token string) *Client {
	return New(baseURL, StaticCredential{Token: token})
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Credential resolves the current credential without making a request.
func (c *Client) Credential() (types.Credential, error) {
	if c.credentials == nil {
		return types.Credential{}, nil
	}
	return c.credentials.Credential()
}

func (c *Client) FetchMessages(ctx context.Context) ([]types.Message, error) {
	body, err := c.do(ctx, http.MethodGet, "/support/messages", nil)
	if err != nil {
		return nil, err
	}
	msgs, err := decodeMessages(body)
	if err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("message is required")
	}
	body, err := c.do(ctx, http.MethodPost, "/support/messages", req)
	if err != nil {
		return nil, err
	}
	return decodeSendResponse(body), nil
}

func (c *Client) CloseMessage(ctx context.Context, id int64) error {
	if !types.IsBackendID(id) {
		return fmt.Errorf("message id %d is not a backend id", id)
	}
	path := "/support/messages/" + strconv.FormatInt(id, 10) + "/close"
	_, err := c.do(ctx, http.MethodPut, path, nil)
	return err
}

func (c *Client) ListOrders(ctx context.Context) ([]types.Order, error) {
	body, err := c.do(ctx, http.MethodGet, "/orders", nil)
	if err != nil {
		return nil, err
	}
	orders, err := decodeOrders(body)
	if err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	cred, err := c.Credential()
	if err != nil {
		return nil, err
	}
	if !cred.Valid() {
		return nil, ErrUnauthenticated
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.Token)
	requestID := logging.NewRequestID()
	req.Header.Set("X-Request-ID", requestID)

	httpClient := c.http
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	started := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Debug("request_failed",
			logging.F("method", method),
			logging.F("path", path),
			logging.F("request_id", requestID),
			logging.Err(err),
		)
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	c.logger.Debug("request_done",
		logging.F("method", method),
		logging.F("path", path),
		logging.F("status", resp.StatusCode),
		logging.F("request_id", requestID),
		logging.F("duration_ms", time.Since(started).Milliseconds()),
	)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(method+" "+path, resp, data)
	}
	if readErr != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: readErr}
	}
	return data, nil
}
