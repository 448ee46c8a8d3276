package digest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hearthhq/hearth/internal/models"
	"log/slog"
)

// Summarizer turns a classified activity feed into a short natural-language
// briefing for the user.
type Summarizer interface {
	Summarize(ctx context.Context, activities []models.ActivitySummary) (string, error)
}

// Config holds configuration for OpenAI API usage.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultConfig returns sensible defaults for digest generation.
func DefaultConfig() Config {
	return Config{
		Model:       openai.GPT4oMini,
		Temperature: 0.4,
		MaxTokens:   400,
		Timeout:     30 * time.Second,
	}
}

// ConfigFromEnv creates config from environment variables with defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.APIKey = os.Getenv("OPENAI_API_KEY")

	if model := os.Getenv("DIGEST_MODEL"); model != "" {
		cfg.Model = model
	}

	return cfg
}

// OpenAIClient generates digests through the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	config Config
	logger *slog.Logger
}

// NewOpenAIClient creates an OpenAI-backed summarizer.
func NewOpenAIClient(cfg Config, logger *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &OpenAIClient{
		client: openai.NewClient(cfg.APIKey),
		config: cfg,
		logger: logger,
	}, nil
}

const systemPrompt = `You are the assistant of a neighborhood community platform.
Summarize the member's activity feed into a short, friendly briefing.
Lead with anything urgent, mention upcoming gatherings and open requests,
and keep it under 120 words. Plain text only.`

// Summarize implements Summarizer.
func (c *OpenAIClient) Summarize(ctx context.Context, activities []models.ActivitySummary) (string, error) {
	if len(activities) == 0 {
		return "You're all caught up. Nothing needs your attention right now.", nil
	}

	apiCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(activities),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("digest completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("digest completion returned no choices")
	}

	c.logger.Debug("digest generated",
		"items", len(activities),
		"duration", time.Since(start),
	)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildPrompt renders the feed as a compact bulleted list for the model.
func buildPrompt(activities []models.ActivitySummary) string {
	var b strings.Builder
	b.WriteString("Current activity feed, highest urgency first:\n")

	for _, a := range activities {
		b.WriteString(fmt.Sprintf("- [%s] (%s) %s", a.Type, a.UrgencyLevel, a.Title))
		if a.DueDate != nil {
			b.WriteString(fmt.Sprintf(" (due %s)", a.DueDate.Format(time.RFC1123)))
		}
		if a.Description != "" {
			b.WriteString(": " + a.Description)
		}
		b.WriteString("\n")
	}

	return b.String()
}
