package ai

import (
	"errors"
	"fmt"
)

// DefaultMimeType тип, с которым картинка уходит в data URL, если другой не задан.
// Исторически всё отправлялось как jpeg независимо от реального формата загрузки.
const DefaultMimeType = "image/jpeg"

// ErrorKind класс ошибки анализа.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindCredential
	KindRequest
	KindTransport
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return ""
	case KindCredential:
		return "CredentialError"
	case KindRequest:
		return "RequestError"
	case KindTransport:
		return "TransportError"
	default:
		return "UnknownError"
	}
}

// ErrEmptyImage возвращается, если в запросе нет байтов картинки.
var ErrEmptyImage = errors.New("image is empty")

// AnalysisRequest одна картинка и один промпт.
type AnalysisRequest struct {
	Prompt   string
	Image    []byte
	MimeType string
}

// Validate проверяет инвариант запроса. Пустой промпт допустим.
func (r AnalysisRequest) Validate() error {
	if len(r.Image) == 0 {
		return ErrEmptyImage
	}
	return nil
}

func (r AnalysisRequest) mime() string {
	if r.MimeType == "" {
		return DefaultMimeType
	}
	return r.MimeType
}

// AnalysisResult либо текст ответа модели, либо классифицированная ошибка.
type AnalysisResult struct {
	Text    string
	Kind    ErrorKind
	Message string
}

func Success(text string) AnalysisResult {
	return AnalysisResult{Text: text}
}

func Failure(kind ErrorKind, message string) AnalysisResult {
	if kind == KindNone {
		kind = KindUnknown
	}
	return AnalysisResult{Kind: kind, Message: message}
}

// OK сообщает, успешен ли анализ.
func (r AnalysisResult) OK() bool { return r.Kind == KindNone }

// String форматирует результат для вывода пользователю.
func (r AnalysisResult) String() string {
	if r.OK() {
		return r.Text
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}
