package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
)

const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"

	defaultQuality = 90
	minWidth       = 1

	// DefaultMaxPixels предел площади картинки, которую разрешено раскодировать (~40 Мп).
	DefaultMaxPixels = 40_000_000
)

var (
	// ErrUnsupportedFormat загружен не png и не jpeg.
	ErrUnsupportedFormat = errors.New("unsupported image format, expected png or jpeg")
	// ErrImageTooLarge заголовок картинки обещает больше пикселей, чем разрешено.
	ErrImageTooLarge = errors.New("image dimensions exceed the limit")
)

// ProcessedImage картинка, готовая к отправке.
type ProcessedImage struct {
	Data     []byte
	Width    int
	Height   int
	MimeType string
}

// DetectMIME определяет тип по первым байтам, не доверяя расширению файла.
func DetectMIME(data []byte) string {
	return http.DetectContentType(data)
}

// Supported сообщает, принимается ли такой тип загрузки.
func Supported(mimeType string) bool {
	return mimeType == MimePNG || mimeType == MimeJPEG
}

// DecodeConfig читает только заголовок png/jpeg и проверяет размеры.
// maxPixels <= 0 снимает ограничение на площадь.
func DecodeConfig(data []byte, maxPixels int) (image.Config, string, error) {
	if len(data) == 0 {
		return image.Config{}, "", errors.New("image is empty")
	}
	if !Supported(DetectMIME(data)) {
		return image.Config{}, "", ErrUnsupportedFormat
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, "", fmt.Errorf("invalid image size: %dx%d", cfg.Width, cfg.Height)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return image.Config{}, "", fmt.Errorf("%w: %dx%d, at most %d pixels allowed", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	return cfg, format, nil
}

// Decode разбирает png/jpeg. Пиксели раскодируются, только если заголовок прошёл DecodeConfig.
func Decode(data []byte, maxPixels int) (image.Image, string, error) {
	if _, _, err := DecodeConfig(data, maxPixels); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Processor уменьшает слишком широкие картинки перед отправкой.
type Processor struct {
	maxWidth  int
	maxPixels int
	quality   int
}

// NewProcessor maxWidth <= 0 отключает уменьшение, maxPixels <= 0 снимает предел площади.
func NewProcessor(maxWidth, maxPixels int) *Processor {
	return &Processor{
		maxWidth:  maxWidth,
		maxPixels: maxPixels,
		quality:   defaultQuality,
	}
}

// Crop то же, что пакетный Crop, с пределом площади процессора.
func (p *Processor) Crop(data []byte, rect image.Rectangle) ([]byte, error) {
	return Crop(data, rect, p.maxPixels)
}

// Process возвращает картинку как есть, если уменьшать не нужно: байты не перекодируются
// и пиксели не раскодируются. Иначе масштабирует с сохранением пропорций и кодирует в исходный формат.
func (p *Processor) Process(data []byte) (ProcessedImage, error) {
	cfg, _, err := DecodeConfig(data, p.maxPixels)
	if err != nil {
		return ProcessedImage{}, err
	}

	origWidth := cfg.Width
	origHeight := cfg.Height
	mimeType := DetectMIME(data)

	if p.maxWidth <= 0 || origWidth <= p.maxWidth {
		return ProcessedImage{Data: data, Width: origWidth, Height: origHeight, MimeType: mimeType}, nil
	}

	img, format, err := Decode(data, p.maxPixels)
	if err != nil {
		return ProcessedImage{}, err
	}

	resizedWidth := max(minWidth, p.maxWidth)
	resizedHeight := max(1, origHeight*resizedWidth/origWidth)
	resized := resizeNearest(img, resizedWidth, resizedHeight)

	var encoded []byte
	if format == "jpeg" {
		encoded, err = encodeJPEG(resized, p.quality)
	} else {
		encoded, err = encodePNG(resized)
	}
	if err != nil {
		return ProcessedImage{}, err
	}

	return ProcessedImage{
		Data:     encoded,
		Width:    resizedWidth,
		Height:   resizedHeight,
		MimeType: mimeType,
	}, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resizeNearest(src image.Image, width int, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	srcBounds := src.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()
	if srcWidth == 0 || srcHeight == 0 {
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		srcY := srcBounds.Min.Y + y*srcHeight/height
		for x := range width {
			srcX := srcBounds.Min.X + x*srcWidth/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}

	return dst
}
