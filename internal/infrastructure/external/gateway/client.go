package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/acadease/backend/errors"
	"github.com/acadease/backend/pkg/config"
	"github.com/acadease/backend/pkg/metrics"
)

// Client talks to the remote record store over its REST API. Every call is
// scoped to a collection and, for record operations, authenticated with the
// caller's bearer token.
type Client struct {
	baseURL        string
	authCollection string
	client         *http.Client
}

// AuthResponse is the payload returned by a successful password sign-in
type AuthResponse struct {
	Token  string          `json:"token"`
	Record json.RawMessage `json:"record"`
}

// ListResponse is the paginated record listing envelope
type ListResponse struct {
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalItems int               `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
	Items      []json.RawMessage `json:"items"`
}

// ListOptions narrows a record listing
type ListOptions struct {
	Filter  string
	Sort    string
	PerPage int
}

type apiError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewClient creates a gateway client from configuration
func NewClient(cfg *config.GatewayConfig) *Client {
	authCollection := cfg.AuthCollection
	if authCollection == "" {
		authCollection = "users"
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		authCollection: authCollection,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// AuthWithPassword signs in with an identity (email or username) and password
func (c *Client) AuthWithPassword(ctx context.Context, identity, password string) (*AuthResponse, error) {
	body := map[string]string{
		"identity": identity,
		"password": password,
	}

	path := fmt.Sprintf("/api/collections/%s/auth-with-password", c.authCollection)
	raw, err := c.do(ctx, http.MethodPost, path, "", body, "auth")
	if err != nil {
		return nil, err
	}

	var auth AuthResponse
	if err := json.Unmarshal(raw, &auth); err != nil {
		return nil, apperrors.ErrInternal(fmt.Errorf("failed to decode auth response: %w", err))
	}
	return &auth, nil
}

// Register creates a new user account. The gateway enforces email uniqueness,
// password rules and the password confirmation; its rejection message is
// surfaced as-is.
func (c *Client) Register(ctx context.Context, email, password, passwordConfirm, name string) (json.RawMessage, error) {
	body := map[string]string{
		"email":           email,
		"password":        password,
		"passwordConfirm": passwordConfirm,
		"name":            name,
	}

	path := fmt.Sprintf("/api/collections/%s/records", c.authCollection)
	return c.do(ctx, http.MethodPost, path, "", body, "register")
}

// CreateRecord creates a record in the given collection on behalf of the
// token's owner
func (c *Client) CreateRecord(ctx context.Context, token, collection string, record interface{}) (json.RawMessage, error) {
	path := fmt.Sprintf("/api/collections/%s/records", collection)
	return c.do(ctx, http.MethodPost, path, token, record, "create")
}

// DeleteRecord removes a record by id
func (c *Client) DeleteRecord(ctx context.Context, token, collection, id string) error {
	path := fmt.Sprintf("/api/collections/%s/records/%s", collection, id)
	_, err := c.do(ctx, http.MethodDelete, path, token, nil, "delete")
	return err
}

// ListRecords fetches records from a collection applying the given filter
// and sort
func (c *Client) ListRecords(ctx context.Context, token, collection string, opts ListOptions) (*ListResponse, error) {
	path := fmt.Sprintf("/api/collections/%s/records", collection)

	params := url.Values{}
	if opts.Filter != "" {
		params.Set("filter", opts.Filter)
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}
	if opts.PerPage > 0 {
		params.Set("perPage", strconv.Itoa(opts.PerPage))
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	raw, err := c.do(ctx, http.MethodGet, path, token, nil, "list")
	if err != nil {
		return nil, err
	}

	var list ListResponse
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, apperrors.ErrInternal(fmt.Errorf("failed to decode list response: %w", err))
	}
	return &list, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body interface{}, operation string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.ErrInternal(fmt.Errorf("failed to marshal request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.ErrInternal(fmt.Errorf("failed to build request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(operation, "unreachable").Inc()
		if ctx.Err() != nil {
			return nil, apperrors.ErrCancelled(operation)
		}
		return nil, apperrors.ErrGatewayUnreachable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(operation, "error").Inc()
		return nil, apperrors.ErrGatewayUnreachable(err)
	}

	if resp.StatusCode >= 400 {
		metrics.GatewayRequests.WithLabelValues(operation, "rejected").Inc()
		return nil, rejectionError(resp.StatusCode, raw)
	}

	metrics.GatewayRequests.WithLabelValues(operation, "ok").Inc()
	return raw, nil
}

// rejectionError converts a non-2xx gateway response into a typed error,
// preserving the upstream message so callers can show it verbatim
func rejectionError(status int, raw []byte) error {
	var ae apiError
	message := http.StatusText(status)
	if err := json.Unmarshal(raw, &ae); err == nil && ae.Message != "" {
		message = ae.Message
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.ErrInvalidCredentials()
	case http.StatusNotFound:
		return apperrors.ErrNotFound("record")
	}
	return apperrors.ErrGatewayRejected(status, message)
}
