package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	domainai "github.com/brlegal/clausula-ai/internal/domain/ai"
	domain "github.com/brlegal/clausula-ai/internal/domain/analysis"
	"github.com/brlegal/clausula-ai/internal/infra/ai/prompt"
)

const (
	maxTokens = 2048
	// Deterministic-leaning sampling; the same contract should produce a
	// stable analysis.
	temperature = 0.2
)

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) model() string {
	if c.Model != "" {
		return c.Model
	}
	return openai.GPT4oMini
}

// Analyze returns the model's free-text clause analysis unmodified.
func (c *Client) Analyze(ctx context.Context, text, uid string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model(),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		User:        uid,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.AnalysisSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.AnalysisUserPrompt(text)},
		},
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", domain.Wrap(domain.ErrAnalysis, "chat completion", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: resposta vazia do modelo", domain.ErrAnalysis)
	}
	return resp.Choices[0].Message.Content, nil
}

// Classify asks for a JSON partition of the clause analysis and parses the
// answer leniently.
func (c *Client) Classify(ctx context.Context, clauseText string) (domainai.Buckets, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model(),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.ClassifySystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.ClassifyUserPrompt(clauseText)},
		},
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return domainai.Buckets{}, domain.Wrap(domain.ErrClassification, "chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return domainai.Buckets{}, fmt.Errorf("%w: resposta vazia do modelo", domain.ErrClassification)
	}

	var buckets domainai.Buckets
	if res := prompt.ScanJSONObject(resp.Choices[0].Message.Content, &buckets); !res.Parsed {
		return domainai.Buckets{}, fmt.Errorf("%w: nenhum objeto JSON na resposta", domain.ErrClassification)
	}
	if buckets.Safe == nil {
		buckets.Safe = []domain.Clause{}
	}
	if buckets.Risky == nil {
		buckets.Risky = []domain.Clause{}
	}
	return buckets, nil
}
