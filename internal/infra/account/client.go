package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/config"
	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
	"medstaff-dashboard/internal/domain/ports/adapter"
	"medstaff-dashboard/internal/infra/logging"
)

// Compile-time checks
var (
	_ adapter.AccountService = (*Client)(nil)
	_ adapter.RoleProvider   = (*Client)(nil)
)

const maxBodyBytes = 1 << 20

// StatusError is a non-2xx answer that did not carry a usable envelope.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("account service returned %d: %s", e.Code, e.Body)
}

// envelope is the account service's response wrapper.
type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Client talks JSON over HTTP to the account service with a service token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	log     *zerolog.Logger
}

// NewClient creates an account service client. A zero timeout falls back to 15s.
func NewClient(cfg config.AccountConfig, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	l := logger.With().Str("component", "AccountClient").Logger()
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
		log:     &l,
	}
}

func (c *Client) GetForm(ctx context.Context, userID string) (*model.FormData, error) {
	var env envelope[*model.FormData]
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/kyc/form", nil, &env); err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}
	if env.Data == nil {
		return &model.FormData{}, nil
	}
	return env.Data, nil
}

// UpdateForm sends the combined personal and address payload. A 4xx carrying an
// envelope is returned as a response with Status false, not as an error.
func (c *Client) UpdateForm(ctx context.Context, userID string, payload model.CombinedPayload) (*model.UpdateFormResponse, error) {
	var resp model.UpdateFormResponse
	err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/kyc/form", payload, &resp)
	var se *StatusError
	switch {
	case err == nil:
		return &resp, nil
	case errors.As(err, &se) && se.Code < 500 && resp.Message != "":
		resp.Status = false
		return &resp, nil
	default:
		return nil, fmt.Errorf("update form: %w", err)
	}
}

func (c *Client) GetUserDetails(ctx context.Context, userID string) (*model.UserDetails, error) {
	var env envelope[*model.UserDetails]
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &env); err != nil {
		return nil, fmt.Errorf("get user details: %w", err)
	}
	if env.Data == nil {
		return nil, domain.ErrNotFound
	}
	return env.Data, nil
}

// SignedUpAs reads the onboarding role from the user's profile.
func (c *Client) SignedUpAs(ctx context.Context, userID string) (string, error) {
	u, err := c.GetUserDetails(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.SignedUpAs, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var env envelope[[]model.Category]
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &env); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return env.Data, nil
}

func (c *Client) ListServices(ctx context.Context) ([]model.Service, error) {
	var env envelope[[]model.Service]
	if err := c.do(ctx, http.MethodGet, "/services", nil, &env); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return env.Data, nil
}

// do sends body as JSON and decodes the answer into out. For non-2xx answers out is
// still filled when the body decodes, and a *StatusError is returned.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := logging.TraceID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	logging.With(ctx, c.log).Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("account service call")

	decodeErr := json.Unmarshal(raw, out)
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: truncate(string(raw), 256)}
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to unmarshal response: %w", decodeErr)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
