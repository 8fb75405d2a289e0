package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"glucowizard-backend/internal/inference"
	"glucowizard-backend/internal/shared/telemetry"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Mode selects how the API surface is chosen.
const (
	ModeAuto      = "auto"
	ModeResponses = "responses"
	ModeChat      = "chat"
)

// Options configures a Client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	// Mode is "auto", "responses" or "chat". Empty means responses against the
	// default endpoint and auto against any other base URL.
	Mode    string
	Timeout time.Duration
}

// Client implements inference.Client against OpenAI-compatible endpoints.
type Client struct {
	http       *resty.Client
	model      string
	capability inference.Capability
}

// NewClient constructs a client and resolves its capability once.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetAuthToken(opts.APIKey).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		model: opts.Model,
	}

	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	if mode == "" {
		mode = ModeAuto
		if baseURL == defaultBaseURL {
			mode = ModeResponses
		}
	}
	switch mode {
	case ModeResponses:
		c.capability = inference.CapabilityResponses
	case ModeChat:
		c.capability = inference.CapabilityChat
	case ModeAuto:
		capability, err := c.probe(ctx)
		if err != nil {
			return nil, err
		}
		c.capability = capability
	default:
		return nil, fmt.Errorf("unknown OPENAI_API_MODE %q", opts.Mode)
	}

	telemetry.Info("inference.client_ready", map[string]any{
		"base_url":   baseURL,
		"model":      c.model,
		"capability": string(c.capability),
	})
	return c, nil
}

// probe posts an empty body to /responses. Servers without that route answer
// 404 or 405; anything else (typically 400 for the missing model) means it exists.
func (c *Client) probe(ctx context.Context) (inference.Capability, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{}).
		Post("/responses")
	if err != nil {
		return "", fmt.Errorf("probe openai capability: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return inference.CapabilityChat, nil
	default:
		return inference.CapabilityResponses, nil
	}
}

func (c *Client) Capability() inference.Capability {
	return c.capability
}

// Generate sends the prompt once. There are no retries.
func (c *Client) Generate(ctx context.Context, parts []inference.Part) (inference.Result, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty prompt")
	}
	start := time.Now()
	var (
		result inference.Result
		err    error
	)
	if c.capability == inference.CapabilityChat {
		result, err = c.generateChat(ctx, parts)
	} else {
		result, err = c.generateResponses(ctx, parts)
	}
	fields := telemetry.ContextFields(ctx, map[string]any{
		"model":       c.model,
		"capability":  string(c.capability),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		fields["err"] = err
		telemetry.Error("inference.failed", fields)
		return nil, err
	}
	telemetry.Info("inference.complete", fields)
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, map[string]any, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, nil, fmt.Errorf("openai request timeout: %w", err)
		}
		return nil, nil, fmt.Errorf("openai request: %w", err)
	}
	payload := resp.Body()
	if resp.IsError() {
		return nil, nil, apiErrorFrom(path, resp.StatusCode(), payload)
	}
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, nil, fmt.Errorf("openai response parse: %w", err)
	}
	return payload, raw, nil
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func apiErrorFrom(path string, status int, payload []byte) error {
	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return fmt.Errorf("openai %s status %d: %s (%s)", path, status, envelope.Error.Message, envelope.Error.Type)
	}
	body := strings.TrimSpace(string(payload))
	if len(body) > 300 {
		body = body[:300]
	}
	return fmt.Errorf("openai %s status %d: %s", path, status, body)
}

var _ inference.Client = (*Client)(nil)
