package ai

import (
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go/v3"
)

// DefaultMaxTokens бюджет ответа модели.
const DefaultMaxTokens = 500

func EncodeImage(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func DecodeImage(encoded string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(encoded)
}

// DataURL встраивает картинку прямо в запрос, без отдельной загрузки файла.
func DataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, EncodeImage(data))
}

// BuildParams собирает запрос chat completion: одно сообщение user из двух частей
// (текст промпта и картинка). Сетевых вызовов не делает.
func BuildParams(req AnalysisRequest, model string, maxTokens int) openai.ChatCompletionNewParams {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	content := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.Prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: DataURL(req.mime(), req.Image),
		}),
	}
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(content),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	}
}
