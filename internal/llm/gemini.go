package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/finwell-app/finwell/internal/common"
	"github.com/finwell-app/finwell/internal/model"
	"github.com/finwell-app/finwell/internal/service"
)

// Config holds configuration for the Gemini classification client.
type Config struct {
	APIKey     string
	Model      string
	RateLimit  int
	MaxRetries int
	RetryDelay time.Duration
}

// GeminiClient implements Client against the Gemini API.
type GeminiClient struct {
	client      *genai.Client
	rateLimiter *rateLimiter
	model       string
	retryOpts   service.RetryOptions
}

// NewGeminiClient creates a Gemini-backed classification client.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key", common.ErrMissingConfig)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}, nil
}

// ClassifyTransactions sends one batch to Gemini and parses the strict-JSON
// response. The service may return fewer results than transactions sent.
func (c *GeminiClient) ClassifyTransactions(ctx context.Context, req BatchRequest) (BatchResponse, error) {
	if len(req.Transactions) == 0 {
		return BatchResponse{Success: true}, nil
	}

	if err := c.rateLimiter.wait(ctx); err != nil {
		return BatchResponse{}, err
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return BatchResponse{}, err
	}

	var raw string
	operation := func() error {
		contents := []*genai.Content{
			{
				Role:  "user",
				Parts: []*genai.Part{{Text: prompt}},
			},
		}
		resp, genErr := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
		if genErr != nil {
			return fmt.Errorf("generate content: %w", genErr)
		}
		raw = resp.Text()
		if raw == "" {
			return fmt.Errorf("empty response from model")
		}
		return nil
	}

	if err := common.WithRetry(ctx, operation, c.retryOpts); err != nil {
		return BatchResponse{}, err
	}

	results, err := parseResults(raw)
	if err != nil {
		return BatchResponse{}, err
	}

	slog.Debug("gemini batch classified",
		"requested", len(req.Transactions),
		"returned", len(results))

	return BatchResponse{Success: true, Results: results}, nil
}

// Close releases the rate limiter's refill goroutine.
func (c *GeminiClient) Close() {
	c.rateLimiter.Close()
}

// buildPrompt renders the classification instructions, the canonical
// category taxonomy, and the transaction batch as strict-JSON input.
func buildPrompt(req BatchRequest) (string, error) {
	txnJSON, err := json.Marshal(req.Transactions)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transactions: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a transaction classifier for small-business tax reporting.\n\n")
	b.WriteString("Classify each transaction below into exactly one of these categories:\n")
	for _, cat := range model.AllCategories() {
		fmt.Fprintf(&b, "- %s (%s, %s)\n", cat.Key, cat.DisplayName, cat.Type)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Respond with a STRICT JSON array only. No prose, no markdown fences.\n")
	b.WriteString("- Each element: {\"id\": string, \"category\": string, \"subcategory\": string, \"vendor\": string, \"confidence\": number}.\n")
	b.WriteString("- category must be one of the keys above.\n")
	b.WriteString("- vendor is the merchant name with location and reference noise removed.\n")
	b.WriteString("- confidence is your certainty in [0, 1].\n")
	b.WriteString("- Omit transactions you cannot classify rather than guessing.\n\n")
	b.WriteString("Transactions:\n")
	b.Write(txnJSON)
	b.WriteString("\n")

	return b.String(), nil
}
