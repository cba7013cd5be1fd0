package analyst

import (
	"ImageAnalyst/internal/ai"
	"ImageAnalyst/internal/config"
	imgproc "ImageAnalyst/internal/service/image"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session всё, что пользователь ввёл для одного анализа. Между запросами ничего не хранится.
type Session struct {
	Credential string
	Prompt     string
	Upload     []byte
	Filename   string
	// Crop область в координатах загруженной картинки; nil = без обрезки.
	Crop *image.Rectangle
}

// Prepared картинка в том виде, в котором она уйдёт в модель.
type Prepared struct {
	Data     []byte
	MimeType string
	Cropped  bool
}

type Analyst struct {
	cfg       *config.Config
	client    ai.Client
	processor *imgproc.Processor
	logger    *zap.SugaredLogger
}

func New(cfg *config.Config, client ai.Client, logger *zap.SugaredLogger) *Analyst {
	return &Analyst{
		cfg:       cfg,
		client:    client,
		processor: imgproc.NewProcessor(cfg.ImageMaxWidth, cfg.ImageMaxPixels),
		logger:    logger,
	}
}

// Cropped возвращает байты картинки после (необязательной) обрезки, без других изменений.
// Без обрезки картинка не раскодируется.
func (a *Analyst) Cropped(s Session) ([]byte, error) {
	if len(s.Upload) == 0 {
		return nil, ai.ErrEmptyImage
	}
	if !imgproc.Supported(imgproc.DetectMIME(s.Upload)) {
		return nil, imgproc.ErrUnsupportedFormat
	}
	if s.Crop == nil {
		return s.Upload, nil
	}
	return a.processor.Crop(s.Upload, *s.Crop)
}

// Prepare обрезает и при необходимости уменьшает картинку, выбирает MIME для data URL.
func (a *Analyst) Prepare(s Session) (Prepared, error) {
	data, err := a.Cropped(s)
	if err != nil {
		return Prepared{}, err
	}
	processed, err := a.processor.Process(data)
	if err != nil {
		return Prepared{}, err
	}

	mimeType := a.cfg.ImageMIME
	if mimeType == "" {
		mimeType = processed.MimeType
	}
	return Prepared{
		Data:     processed.Data,
		MimeType: mimeType,
		Cropped:  s.Crop != nil,
	}, nil
}

// Analyze выполняет сценарий «Проанализировать картинку» один раз.
func (a *Analyst) Analyze(ctx context.Context, s Session) ai.AnalysisResult {
	res, _ := a.Run(ctx, s)
	return res
}

// Run как Analyze, но возвращает и картинку, ушедшую в модель (для превью).
// Если подготовить картинку не удалось, Prepared пустой.
func (a *Analyst) Run(ctx context.Context, s Session) (ai.AnalysisResult, Prepared) {
	requestID := uuid.NewString()

	prepared, err := a.Prepare(s)
	if err != nil {
		a.logger.Warnw("Не удалось подготовить изображение", "requestID", requestID, "file", s.Filename, "error", err)
		if errors.Is(err, ai.ErrEmptyImage) {
			return ai.Classify(err), Prepared{}
		}
		return ai.Failure(ai.KindRequest, fmt.Sprintf("The image could not be prepared: %v", err)), Prepared{}
	}

	start := time.Now()
	a.logger.Infow("Запрос в OpenAI...",
		"requestID", requestID,
		"file", s.Filename,
		"bytes", len(prepared.Data),
		"mime", prepared.MimeType,
		"cropped", prepared.Cropped,
		"promptLen", len(s.Prompt),
	)
	res := a.client.Analyze(ctx, ai.AnalysisRequest{
		Prompt:   s.Prompt,
		Image:    prepared.Data,
		MimeType: prepared.MimeType,
	}, s.Credential)
	dur := time.Since(start)

	if !res.OK() {
		a.logger.Errorw("Ошибка ответа OpenAI", "requestID", requestID, "duration", dur.String(), "kind", res.Kind.String(), "message", res.Message)
	} else {
		a.logger.Infow("Ответ OpenAI получен", "requestID", requestID, "duration", dur.String(), "chars", len(res.Text))
	}
	return res, prepared
}
