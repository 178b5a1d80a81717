package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/digiberkat/storefront-go/pkg/auth"
	"github.com/digiberkat/storefront-go/pkg/config"
	pkgerrors "github.com/digiberkat/storefront-go/pkg/errors"
	"github.com/digiberkat/storefront-go/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("storefront base url is required")
	errTokensRequired  = errors.New("storefront token provider is required")
	errLoggerRequired  = errors.New("storefront logger is required")
)

// Client is a typed wrapper over the storefront REST API with centralized
// auth, logging, payload validation, and error mapping. It owns no cart
// state; every call is a plain request/response exchange.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     auth.TokenProvider
	logger     *logger.Logger
	validate   *validator.Validate
}

// NewClient initializes the storefront client against the configured base URL.
func NewClient(ctx context.Context, cfg config.APIConfig, tokens auth.TokenProvider, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if tokens == nil {
		return nil, errTokensRequired
	}
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    baseURL,
		tokens:     tokens,
		logger:     logg,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}

	logg.Info(ctx, "storefront client initialized")
	return c, nil
}

// call describes one REST exchange.
type call struct {
	op       string
	method   string
	path     string
	body     any
	out      any
	fallback string
	// badRequestAs overrides the error code mapped for 400/422 responses,
	// e.g. INVALID_QUANTITY for quantity updates.
	badRequestAs pkgerrors.Code
}

func (c *Client) do(ctx context.Context, call call) error {
	requestID := uuid.NewString()
	ctx = c.logger.WithFields(ctx, map[string]any{
		"request_id": requestID,
		"operation":  call.op,
	})

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.log(ctx, "error", call.op, map[string]any{"error": err.Error()})
		return err
	}

	var reader io.Reader
	if call.body != nil {
		encoded, err := json.Marshal(call.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("encode %s payload", call.op))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, call.method, c.baseURL+"/"+strings.TrimPrefix(call.path, "/"), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("build %s request", call.op))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)
	if call.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log(ctx, "request", call.op, map[string]any{
		"method": call.method,
		"path":   call.path,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", call.op, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, call.fallback)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log(ctx, "error", call.op, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, call.fallback)
	}

	if resp.StatusCode >= 400 {
		msg := serverMessage(raw)
		if msg == "" {
			msg = call.fallback
		}
		code := c.codeForStatus(resp.StatusCode, call.badRequestAs)
		c.log(ctx, "error", call.op, map[string]any{
			"status": resp.StatusCode,
			"error":  msg,
		})
		return pkgerrors.New(code, msg).WithDetails(map[string]any{"status": resp.StatusCode})
	}

	if call.out != nil {
		if err := json.Unmarshal(raw, call.out); err != nil {
			c.log(ctx, "error", call.op, map[string]any{"error": err.Error()})
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", call.op))
		}
	}

	c.log(ctx, "response", call.op, map[string]any{"status": resp.StatusCode})
	return nil
}

func (c *Client) validateParams(op string, params any, fallback string) error {
	if err := c.validate.Struct(params); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fallback).WithDetails(map[string]any{"operation": op})
	}
	return nil
}

func serverMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

func (c *Client) codeForStatus(status int, badRequestAs pkgerrors.Code) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if badRequestAs != "" {
			return badRequestAs
		}
		return pkgerrors.CodeServerRejected
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeServerRejected
		}
		return pkgerrors.CodeDependency
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("storefront %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("storefront %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "authorization", "secret", "password", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
