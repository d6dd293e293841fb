package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

// replyPath is where the assistant's text lives in a completion response.
const replyPath = "choices.0.message.content"

// ErrMissingCredential is returned when a request is attempted without an API key.
var ErrMissingCredential = errors.New("no API key configured")

// TransportError means the request never produced a complete response:
// connection, TLS or read failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError means a response arrived but could not be used: a non-2xx
// status, a body that is not JSON, or a missing or mistyped reply field.
type ProtocolError struct {
	StatusCode int
	Reason     string
}

func (e *ProtocolError) Error() string {
	if e.StatusCode < 200 || e.StatusCode >= 300 {
		return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Reason)
	}
	return "unexpected API response: " + e.Reason
}

// Completer produces the assistant's reply for an assembled message list.
type Completer interface {
	Complete(ctx context.Context, messages []Message, credential string) (string, error)
}

// Gateway sends chat completion requests to a single endpoint. Each call
// issues exactly one request; there is no retry.
type Gateway struct {
	endpoint    string
	model       string
	temperature float64
	base        http.RoundTripper
	logger      *slog.Logger
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithTransport sets the round tripper beneath the credential layer.
func WithTransport(rt http.RoundTripper) GatewayOption {
	return func(g *Gateway) { g.base = rt }
}

// NewGateway creates a gateway for the endpoint and model in cfg.
func NewGateway(cfg *Config, logger *slog.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		base:        http.DefaultTransport,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Complete posts messages to the endpoint and returns the first choice's
// message content. Failures are *TransportError or *ProtocolError.
func (g *Gateway) Complete(ctx context.Context, messages []Message, credential string) (string, error) {
	if credential == "" {
		return "", ErrMissingCredential
	}

	temperature := g.temperature
	bodyBytes, err := json.Marshal(ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	g.logger.Debug("sending completion request",
		"endpoint", g.endpoint,
		"model", g.model,
		"messages", len(messages),
	)

	resp, err := g.client(credential).Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("reading response: %w", err)}
	}

	g.logger.Debug("received completion response",
		"status", resp.StatusCode,
		"bytes", len(respData),
	)

	return extractReply(resp.StatusCode, respData)
}

// client wraps the base transport so every request carries the credential
// as a bearer token.
func (g *Gateway) client(credential string) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential, TokenType: "Bearer"}),
			Base:   g.base,
		},
	}
}

func extractReply(statusCode int, body []byte) (string, error) {
	if statusCode < 200 || statusCode >= 300 {
		reason := http.StatusText(statusCode)
		if message := gjson.GetBytes(body, "error.message"); message.Type == gjson.String && message.Str != "" {
			reason = message.Str
		}
		return "", &ProtocolError{StatusCode: statusCode, Reason: reason}
	}

	if !gjson.ValidBytes(body) {
		return "", &ProtocolError{StatusCode: statusCode, Reason: "response body is not valid JSON"}
	}

	reply := gjson.GetBytes(body, replyPath)
	if !reply.Exists() {
		return "", &ProtocolError{StatusCode: statusCode, Reason: "no reply at " + replyPath}
	}
	if reply.Type != gjson.String {
		return "", &ProtocolError{StatusCode: statusCode, Reason: fmt.Sprintf("reply at %s is %s, not a string", replyPath, reply.Type)}
	}
	return reply.Str, nil
}
