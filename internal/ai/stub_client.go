package ai

import (
	"context"
	"strings"
)

// StubClient заглушка, которая не делает реальных запросов
type StubClient struct {
	answer string
}

func NewStubClient(answer string) *StubClient {
	if answer == "" {
		answer = "запрос получен"
	}
	return &StubClient{answer: answer}
}

func (c *StubClient) Analyze(_ context.Context, req AnalysisRequest, credential string) AnalysisResult {
	if strings.TrimSpace(credential) == "" {
		return Classify(ErrEmptyCredential)
	}
	if err := req.Validate(); err != nil {
		return Classify(err)
	}
	return Success(c.answer)
}
