package screen

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/kbinani/screenshot"
)

// AllDisplays склеивает все мониторы в одну картинку.
const AllDisplays = -1

// ErrNoDisplays активных мониторов не найдено (например, запуск без графической сессии).
var ErrNoDisplays = errors.New("no active displays detected")

// Capture снимает экран и возвращает PNG.
func Capture(display int) ([]byte, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, ErrNoDisplays
	}
	if display >= n || display < AllDisplays {
		return nil, fmt.Errorf("display %d is out of range, %d active", display, n)
	}

	var img image.Image
	var err error
	if display == AllDisplays {
		img, err = captureAll(n)
	} else {
		img, err = screenshot.CaptureDisplay(display)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// captureAll вычисляет объединённые границы всех мониторов и копирует каждый в общий холст.
func captureAll(n int) (image.Image, error) {
	union := image.Rect(0, 0, 0, 0)
	for i := range n {
		b := screenshot.GetDisplayBounds(i)
		if i == 0 {
			union = b
			continue
		}
		union = union.Union(b)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, union.Dx(), union.Dy()))
	var errs []error
	for i := range n {
		b := screenshot.GetDisplayBounds(i)
		img, err := screenshot.CaptureRect(b)
		if err != nil {
			errs = append(errs, fmt.Errorf("capture display %d: %w", i, err))
			continue
		}
		dstPoint := image.Pt(b.Min.X-union.Min.X, b.Min.Y-union.Min.Y)
		dstRect := image.Rectangle{Min: dstPoint, Max: dstPoint.Add(b.Size())}
		draw.Draw(canvas, dstRect, img, image.Point{}, draw.Src)
	}
	if len(errs) == n {
		return nil, errors.Join(errs...)
	}
	return canvas, nil
}
