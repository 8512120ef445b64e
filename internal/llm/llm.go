package llm

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/gitfudge0/werkday/internal/common"
	"github.com/gitfudge0/werkday/internal/config"
)

const defaultModel = "gpt-4o-mini"

// Client produces a single completion for a prompt. Implemented by the
// OpenAI-backed client; faked in tests.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// OpenAI calls the chat-completions endpoint once per request. No retries,
// no streaming.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI builds a client from the stored LLM config. Returns nil when no
// API key is configured, which callers treat as "narrative unavailable".
func NewOpenAI(cfg config.LLMConfig) *OpenAI {
	if cfg.APIKey == "" {
		return nil
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
	}
}

func (o *OpenAI) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	logger := common.Logger()
	logger.Debug("llm: sending chat completion request", "model", o.model)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		logger.Error("llm: chat completion failed", "error", err)
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	logger.Debug("llm: chat completion succeeded")
	return resp.Choices[0].Message.Content, nil
}
