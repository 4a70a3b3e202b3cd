// Package generation wraps the Gemini API behind the narrow interface the
// analysis orchestrator needs.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"brandscope_backend/platform/config"
)

// Classification buckets every provider failure into one of the two outcomes
// the orchestrator distinguishes.
type Classification string

const (
	ClassificationQuotaExhausted Classification = "quota_exhausted"
	ClassificationOther          Classification = "other"
)

// QuotaError marks a generation failure caused by provider quota exhaustion.
type QuotaError struct {
	Err error
}

func (e *QuotaError) Error() string { return fmt.Sprintf("generation quota exhausted: %v", e.Err) }
func (e *QuotaError) Unwrap() error { return e.Err }

// IsQuotaExhausted reports whether err (anywhere in its chain) is a quota
// exhaustion failure.
func IsQuotaExhausted(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// Classify maps an error from Generate into its outcome bucket. Timeouts and
// transport failures count as Other; only explicit provider quota signals
// count as quota exhaustion.
func Classify(err error) Classification {
	if IsQuotaExhausted(err) {
		return ClassificationQuotaExhausted
	}
	return ClassificationOther
}

// Client calls the Gemini API to produce a brand analysis from a prepared
// prompt. Safe for concurrent use.
type Client struct {
	genai   *genai.Client
	model   string
	timeout time.Duration
}

func NewClient(ctx context.Context, cfg config.GenerationConfig) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("generation: create client: %w", err)
	}
	return &Client{
		genai:   gc,
		model:   cfg.GetGeminiModel(),
		timeout: cfg.GetGenerationTimeout(),
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Generate sends prompt to the model and returns the trimmed text response.
// Every call carries its own deadline so a stuck provider cannot hold a
// request slot open.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.genai.Models.GenerateContent(callCtx, c.model, genai.Text(prompt), nil)
	if err != nil {
		if isQuotaAPIError(err) {
			return "", &QuotaError{Err: err}
		}
		return "", fmt.Errorf("generation: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("generation: empty model response")
	}
	return text, nil
}

func isQuotaAPIError(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED"
}
