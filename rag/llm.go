package rag

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/eliassondavid/paragrafen-ai/helper"
)

const (
	// DefaultLLMModel is used when no model is configured.
	DefaultLLMModel = "claude-sonnet-4-5"

	defaultLLMMaxTokens = 2048
)

// LLM generates one answer from a system prompt and a user message.
type LLM interface {
	Complete(ctx context.Context, system string, user string) (string, error)
}

// AnthropicLLM answers through the Anthropic Messages API.
type AnthropicLLM struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicLLM creates a client from the ANTHROPIC_API_KEY environment
// variable. Empty model or non-positive maxTokens use the defaults.
func NewAnthropicLLM(model string, maxTokens int64) (*AnthropicLLM, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, helper.NewError("anthropic client", fmt.Errorf("environment variable ANTHROPIC_API_KEY is not set"))
	}
	if model == "" {
		model = DefaultLLMModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultLLMMaxTokens
	}

	return &AnthropicLLM{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Complete sends one user message and returns the concatenated text blocks
// of the response.
func (a *AnthropicLLM) Complete(ctx context.Context, system string, user string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", helper.NewError("anthropic messages create", err)
	}

	var answer string
	for _, block := range message.Content {
		if block.Type == "text" {
			answer += block.Text
		}
	}
	if answer == "" {
		return "", helper.NewError("anthropic messages create", fmt.Errorf("response contains no text content"))
	}
	return answer, nil
}
