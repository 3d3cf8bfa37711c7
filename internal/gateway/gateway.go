// Package gateway talks to the language-model service that extracts field values and phrases replies.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"docfill/internal/config"
)

// ErrEmptyResponse is returned when the service answers without any choice.
var ErrEmptyResponse = errors.New("gateway returned no choices")

// Message is one role-tagged turn of the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client completes a conversation. Implementations must honor ctx cancellation.
type Client interface {
	Complete(ctx context.Context, system string, history []Message, utterance string, opts ...Option) (string, error)
}

type callOptions struct {
	temperature float64
	jsonMode    bool
}

// Option tunes a single Complete call.
type Option func(*callOptions)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *callOptions) { o.temperature = t }
}

// WithJSON asks the service for a JSON object response.
func WithJSON() Option {
	return func(o *callOptions) { o.jsonMode = true }
}

// NormalizeRole maps chat roles onto the two the service understands.
func NormalizeRole(role string) string {
	switch strings.ToLower(role) {
	case "bot", "assistant":
		return "assistant"
	default:
		return "user"
	}
}

// HTTPClient calls an OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	log     *zap.Logger
}

// NewHTTPClient builds a client from cfg. A nil httpClient gets a traced default with cfg's timeout.
func NewHTTPClient(cfg config.GatewayConfig, httpClient *http.Client, log *zap.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    httpClient,
		log:     log.Named("gateway"),
	}
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete sends system, history and utterance as one request and returns the first choice's content.
func (c *HTTPClient) Complete(ctx context.Context, system string, history []Message, utterance string, opts ...Option) (string, error) {
	o := callOptions{temperature: 0.1}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := otel.Tracer("docfill/gateway").Start(ctx, "gateway.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("gateway.model", c.model),
		attribute.Int("gateway.history_len", len(history)),
		attribute.Bool("gateway.json_mode", o.jsonMode),
	)

	msgs := make([]Message, 0, len(history)+2)
	msgs = append(msgs, Message{Role: "system", Content: system})
	for _, m := range history {
		msgs = append(msgs, Message{Role: NormalizeRole(m.Role), Content: m.Content})
	}
	msgs = append(msgs, Message{Role: "user", Content: utterance})

	body := completionRequest{Model: c.model, Messages: msgs, Temperature: o.temperature}
	if o.jsonMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	content, err := c.do(ctx, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("completion failed", zap.Error(err))
		return "", err
	}
	return content, nil
}

func (c *HTTPClient) do(ctx context.Context, body completionRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
