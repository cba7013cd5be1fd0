package ai

import "context"

// Client анализирует одну картинку с промптом. Все реализации должны быть взаимозаменяемыми
// и никогда не возвращать ошибку напрямую: неудача описывается в AnalysisResult.
type Client interface {
	Analyze(ctx context.Context, req AnalysisRequest, credential string) AnalysisResult
}
