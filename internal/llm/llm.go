// Package llm talks to the external generative service. Every implementation
// bounds each call with its own timeout and never retries.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultTimeout     = 90 * time.Second
)

// Request is a single prompt. JSON asks the service for a strict JSON body.
type Request struct {
	Prompt string
	JSON   bool
}

// Client is a generative service.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a Client.
type Config struct {
	Provider string

	GeminiAPIKey string
	GeminiModel  string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	Timeout time.Duration
}

// New builds the client for cfg.Provider. An empty provider selects Gemini.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout)
	case ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.Timeout)
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
