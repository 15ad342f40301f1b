package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"webGuide/internal/sanitizer"
)

type Client struct {
	client      *openai.Client
	model       string
	visionModel string
	maxTokens   int
	logger      Logger
	sanitizer   *sanitizer.DataSanitizer
	rateLimiter *RateLimiter
}

func NewClient(apiKey, model, visionModel string, maxTokens, callsPerMinute int, logger Logger) *Client {
	if visionModel == "" {
		visionModel = model
	}
	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		visionModel: visionModel,
		maxTokens:   maxTokens,
		logger:      logger,
		sanitizer:   sanitizer.New(),
		rateLimiter: NewRateLimiter(callsPerMinute),
	}
}

// askVision отправляет скриншот и промпт vision-модели.
// Блокируется на rate limiter до появления бюджета.
func (c *Client) askVision(ctx context.Context, promptKind, prompt string, screenshot []byte, runID *uint) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("ожидание бюджета запросов: %w", err)
	}

	imageURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(screenshot)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.visionModel,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
				},
			},
		},
	})
	if err != nil {
		c.logRequest(runID, promptKind, prompt, fmt.Sprintf("Ошибка: %v", err), 0)
		return "", fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("пустой ответ от OpenAI")
	}

	content := resp.Choices[0].Message.Content
	c.logRequest(runID, promptKind, prompt, content, resp.Usage.TotalTokens)
	return content, nil
}

// Complete выполняет текстовый запрос без изображения.
func (c *Client) Complete(ctx context.Context, promptKind, prompt string, runID *uint) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("ожидание бюджета запросов: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.logRequest(runID, promptKind, prompt, fmt.Sprintf("Ошибка: %v", err), 0)
		return "", fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("пустой ответ от OpenAI")
	}

	content := resp.Choices[0].Message.Content
	c.logRequest(runID, promptKind, prompt, content, resp.Usage.TotalTokens)
	return content, nil
}

func (c *Client) logRequest(runID *uint, promptKind, prompt, response string, tokens int) {
	if c.logger == nil {
		return
	}
	_ = c.logger.LogLLMRequest(runID, nil, promptKind,
		c.sanitizer.Sanitize(prompt), c.sanitizer.Sanitize(response), c.visionModel, tokens)
}
