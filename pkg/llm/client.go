// Package llm provides a provider-agnostic client for the external
// generative capability: free-text generation, category classification,
// and structured extraction over one OpenAI-compatible chat endpoint.
//
// Failure semantics: every call is a bounded two-attempt strategy - the
// primary model once, then the fallback model once. A second failure
// surfaces as ErrUnavailable; nothing retries indefinitely.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/TrapWireAI/lurebox/pkg/httputil"
	"github.com/TrapWireAI/lurebox/pkg/logger"
)

// Provider defines the backend service type.
type Provider string

const (
	ProviderOllama     Provider = "ollama"
	ProviderOpenRouter Provider = "openrouter"
	ProviderGroq       Provider = "groq"
	ProviderCustom     Provider = "custom"
)

// ErrUnavailable marks a capability-unavailable condition: both the primary
// and the fallback model attempt failed. Callers degrade, they do not retry.
var ErrUnavailable = errors.New("llm capability unavailable")

// ClientConfig holds the configuration for the client.
type ClientConfig struct {
	Provider      Provider
	APIKey        string // Optional for Ollama
	Model         string
	FallbackModel string // Secondary model tried once when the primary fails
	BaseURL       string // Optional override
	Timeout       time.Duration
	MaxConcurrent int // Bound on in-flight provider calls (default 32)
}

// Client talks to one OpenAI-compatible chat-completions endpoint.
type Client struct {
	client   *http.Client
	provider Provider
	baseURL  string
	apiKey   string
	attempts []string // model names, primary first
	sem      *httputil.Semaphore
	log      *logger.Logger
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new client instance.
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	var baseURL string
	switch cfg.Provider {
	case ProviderOllama:
		baseURL = "http://localhost:11434/v1" // OpenAI-compatible endpoint of Ollama
	case ProviderGroq:
		baseURL = "https://api.groq.com/openai/v1"
	case ProviderOpenRouter, ProviderCustom:
		fallthrough
	default:
		baseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	attempts := []string{cfg.Model}
	if cfg.FallbackModel != "" && cfg.FallbackModel != cfg.Model {
		attempts = append(attempts, cfg.FallbackModel)
	}

	return &Client{
		client:   httputil.NewClient(timeout),
		provider: cfg.Provider,
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		attempts: attempts,
		sem:      httputil.NewSemaphore(cfg.MaxConcurrent),
		log:      log.WithComponent("llm"),
	}
}

// Generate produces free text for the given prompt and system instructions.
func (c *Client) Generate(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
	msgs := make([]message, 0, 2)
	if system != "" {
		msgs = append(msgs, message{Role: "system", Content: system})
	}
	msgs = append(msgs, message{Role: "user", Content: prompt})

	return c.complete(ctx, msgs, temperature, maxTokens)
}

// Classify asks the model to place text in one of the given categories and
// returns (category, confidence). The response format is lenient: anything
// unparseable degrades to ("legitimate", 0.5) rather than an error, so a
// confused model never breaks the detection pipeline. Transport failures
// after the fallback attempt do return an error.
func (c *Client) Classify(ctx context.Context, text string, categories []string, system string) (string, float64, error) {
	prompt := fmt.Sprintf(`Classify the following message into one of these categories: %s

Message: %s

Respond with ONLY the category name and confidence score (0-1) in this format:
Category: [category name]
Confidence: [0.0-1.0]`, strings.Join(categories, ", "), text)

	// Low temperature for deterministic classification
	resp, err := c.Generate(ctx, prompt, system, 0.3, 100)
	if err != nil {
		return "", 0, err
	}

	category, confidence := ParseClassification(resp, categories)
	return category, confidence, nil
}

// ExtractJSON asks the model for structured data and returns the first
// parseable JSON value in its reply. Malformed output yields (nil, nil):
// the extraction contributes nothing but never fails the caller.
func (c *Client) ExtractJSON(ctx context.Context, prompt, system string) (json.RawMessage, error) {
	fullPrompt := prompt + "\n\nRespond with valid JSON only. No other text or explanation."

	resp, err := c.Generate(ctx, fullPrompt, system, 0.3, 500)
	if err != nil {
		return nil, err
	}

	raw, ok := DecodeLoose(resp)
	if !ok {
		c.log.Warn().Int("response_len", len(resp)).Msg("model returned unparseable JSON, contributing nothing")
		return nil, nil
	}
	return raw, nil
}

// complete runs the bounded two-attempt strategy over the configured models.
func (c *Client) complete(ctx context.Context, msgs []message, temperature float64, maxTokens int) (string, error) {
	if err := c.sem.Acquire(ctx); err != nil {
		return "", err
	}
	defer c.sem.Release()

	var lastErr error
	for i, model := range c.attempts {
		content, err := c.callChat(ctx, chatRequest{
			Model:       model,
			Messages:    msgs,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
		if err == nil {
			return content, nil
		}
		lastErr = err
		if i == 0 && len(c.attempts) > 1 {
			c.log.Warn().Err(err).Str("model", model).Str("fallback", c.attempts[1]).
				Msg("primary model failed, retrying with fallback")
		}
	}

	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) callChat(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer httputil.DrainAndClose(resp.Body)

	body, err := httputil.ReadResponseBody(resp.Body, httputil.MaxResponseSize)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal error: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return result.Choices[0].Message.Content, nil
}

// Ping verifies the provider is reachable with a trivial completion.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Generate(ctx, "Respond with 'OK' only.", "", 0, 10)
	return err
}
