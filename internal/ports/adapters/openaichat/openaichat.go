// Package openaichat implements the Generator port against any
// OpenAI-compatible chat completions endpoint (OpenAI, OpenRouter).
package openaichat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"shortie/internal/ports"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"

	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenRouterModel = "openai/gpt-4o-mini"
)

type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	// Identification headers some gateways want on every request.
	Referer string
	Title   string
}

type Adapter struct {
	model  string
	apiKey string
	client openai.Client
}

func New(cfg Config) *Adapter {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		if cfg.Provider == ProviderOpenRouter {
			model = defaultOpenRouterModel
		} else {
			model = defaultOpenAIModel
		}
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if base := normalizeBaseURL(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Provider == ProviderOpenRouter {
		referer := cfg.Referer
		if referer == "" {
			referer = "https://shortie.local"
		}
		title := cfg.Title
		if title == "" {
			title = "shortie"
		}
		opts = append(opts, option.WithHeader("HTTP-Referer", referer))
		opts = append(opts, option.WithHeader("X-Title", title))
	}

	return &Adapter{model: model, apiKey: cfg.APIKey, client: openai.NewClient(opts...)}
}

// Generate sends the messages and returns the raw reply text. It asks for
// json_object output first and retries plain when the gateway rejects the
// response format; the caller's extraction cascade handles either shape.
func (a *Adapter) Generate(ctx context.Context, messages []ports.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    toOpenAI(messages),
		Model:       a.model,
		Temperature: openai.Float(0.7),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil && shouldRetryPlain(err) {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{}
		resp, err = a.client.Chat.Completions.New(ctx, params)
	}
	if err != nil {
		return "", fmt.Errorf("chat completion (model=%s): %s", a.model, redactSecrets(err.Error(), a.apiKey))
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return content, nil
}

func toOpenAI(messages []ports.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case ports.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func shouldRetryPlain(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "response_format") ||
		strings.Contains(msg, "json_object") ||
		(strings.Contains(msg, "unsupported") && strings.Contains(msg, "format"))
}
