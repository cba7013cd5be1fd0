package ai

import (
	"ImageAnalyst/internal/config"
	"context"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// VisionClient отправляет текст и картинку в OpenAI Chat Completions.
// Клиент SDK создаётся на каждый вызов: ключ вводится пользователем и нигде не хранится.
type VisionClient struct {
	model     string
	maxTokens int
	opts      []option.RequestOption
}

func NewVisionClient(cfg *config.Config, opts ...option.RequestOption) *VisionClient {
	base := []option.RequestOption{
		// повторов нет: пользователь сам решает, отправлять ли запрос ещё раз
		option.WithMaxRetries(0),
	}
	if cfg.OpenAIBaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return &VisionClient{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		opts:      append(base, opts...),
	}
}

func (c *VisionClient) Analyze(ctx context.Context, req AnalysisRequest, credential string) AnalysisResult {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Classify(ErrEmptyCredential)
	}
	if err := req.Validate(); err != nil {
		return Classify(err)
	}

	opts := append([]option.RequestOption{option.WithAPIKey(credential)}, c.opts...)
	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, BuildParams(req, c.model, c.maxTokens))
	if err != nil {
		return Classify(err)
	}
	if len(resp.Choices) == 0 {
		return Classify(ErrNoChoices)
	}
	return Success(resp.Choices[0].Message.Content)
}
