package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/openai/openai-go/v3"
)

// ErrEmptyCredential ключ не введён, запрос не отправляется.
var ErrEmptyCredential = errors.New("api key is empty")

// ErrNoChoices сервис ответил без единого варианта.
var ErrNoChoices = errors.New("response contains no choices")

// Classify переводит ошибку удалённого вызова в результат для пользователя.
func Classify(err error) AnalysisResult {
	if err == nil {
		return Failure(KindUnknown, "unknown error")
	}

	if errors.Is(err, ErrEmptyCredential) {
		return Failure(KindCredential, "API key is missing. Enter your OpenAI API key and try again.")
	}
	if errors.Is(err, ErrEmptyImage) {
		return Failure(KindRequest, "No image to analyze. Upload a PNG or JPEG image.")
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = http.StatusText(apiErr.StatusCode)
		}
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return Failure(KindCredential, fmt.Sprintf("The API key was rejected (%d): %s", apiErr.StatusCode, detail))
		case http.StatusBadRequest, http.StatusNotFound, http.StatusRequestEntityTooLarge,
			http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
			return Failure(KindRequest, fmt.Sprintf("The request was rejected (%d): %s", apiErr.StatusCode, detail))
		default:
			return Failure(KindUnknown, fmt.Sprintf("The service returned an error (%d): %s", apiErr.StatusCode, detail))
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Failure(KindTransport, fmt.Sprintf("The request did not complete: %v", err))
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return Failure(KindTransport, fmt.Sprintf("Could not reach the service: %v", err))
	}

	return Failure(KindUnknown, fmt.Sprintf("An error occurred: %v", err))
}
