// Package openai generates the daily tip with the chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

const systemPrompt = "You are a senior software engineer writing for zerofiltre.tech readers. " +
	"Give one practical, self-contained programming tip of at most 80 words. " +
	"No greeting, no title, plain text only."

const userPrompt = "Write today's developer tip."

type TipGenerator struct {
	client *goopenai.Client
	model  string
	ready  bool
}

func New(cfg config.OpenAIConfig, httpClient *http.Client) *TipGenerator {
	c := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if httpClient != nil {
		c.HTTPClient = httpClient
	}
	model := cfg.Model
	if model == "" {
		model = goopenai.GPT4oMini
	}
	return &TipGenerator{
		client: goopenai.NewClientWithConfig(c),
		model:  model,
		ready:  cfg.APIKey != "",
	}
}

var _ provider.TipGenerator = (*TipGenerator)(nil)

func (g *TipGenerator) GenerateTip(ctx context.Context) (string, error) {
	if !g.ready {
		return "", provider.ErrNotConfigured
	}
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   200,
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices")
	}
	tip := strings.TrimSpace(resp.Choices[0].Message.Content)
	if tip == "" {
		return "", errors.New("openai chat completion: empty tip")
	}
	return tip, nil
}
