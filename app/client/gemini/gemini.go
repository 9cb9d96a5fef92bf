package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/do"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"tezbot/app/config"
)

const requestTimeout = 30 * time.Second

type Client struct {
	cfg *config.Config
	llm *googleai.GoogleAI
}

func NewClient(di *do.Injector) (*Client, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.Gemini.APIKey),
		googleai.WithDefaultModel(cfg.Gemini.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		cfg: cfg,
		llm: llm,
	}, nil
}

// GenerateText runs a single chat turn. systemPrompt may be empty.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var messages []llms.MessageContent
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("gemini text generation failed: %w", err)
	}

	return firstChoice(res)
}

// AnalyzeImage describes an image, optionally guided by the user's caption.
func (c *Client) AnalyzeImage(ctx context.Context, mimeType string, data []byte, caption string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if caption == "" {
		caption = "Опиши, что изображено на этой картинке."
	}

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, data),
				llms.TextPart(caption),
			},
		},
	}

	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("gemini image analysis failed: %w", err)
	}

	return firstChoice(res)
}

// TranscribeAudio is the fallback transcription path when the dedicated
// speech recognizer is not configured.
func (c *Client) TranscribeAudio(ctx context.Context, mimeType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, data),
				llms.TextPart("Расшифруй это голосовое сообщение. Верни только текст, без комментариев."),
			},
		},
	}

	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("gemini audio transcription failed: %w", err)
	}

	return firstChoice(res)
}

func firstChoice(res *llms.ContentResponse) (string, error) {
	if res == nil || len(res.Choices) == 0 {
		return "", fmt.Errorf("empty model response")
	}

	text := strings.TrimSpace(res.Choices[0].Content)
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}

	return text, nil
}
