package image

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Crop вырезает прямоугольник (в координатах картинки) и возвращает PNG.
// Прямоугольник обрезается по границам картинки. maxPixels как в Decode.
func Crop(data []byte, rect image.Rectangle, maxPixels int) ([]byte, error) {
	img, _, err := Decode(data, maxPixels)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	r := rect.Canon().Add(bounds.Min).Intersect(bounds)
	if r.Empty() {
		return nil, fmt.Errorf("crop area %v is outside of image %dx%d", rect, bounds.Dx(), bounds.Dy())
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := range r.Dy() {
		for x := range r.Dx() {
			dst.Set(x, y, img.At(r.Min.X+x, r.Min.Y+y))
		}
	}
	return encodePNG(dst)
}

// ParseCrop разбирает строку "x,y,width,height".
func ParseCrop(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("crop must be x,y,width,height, got %q", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("crop value %q: %w", p, err)
		}
		vals[i] = v
	}
	return CropRect(vals[0], vals[1], vals[2], vals[3])
}

// CropRect строит прямоугольник из левого верхнего угла и размеров.
func CropRect(x, y, width, height int) (image.Rectangle, error) {
	if x < 0 || y < 0 {
		return image.Rectangle{}, fmt.Errorf("crop origin must not be negative: %d,%d", x, y)
	}
	if width <= 0 || height <= 0 {
		return image.Rectangle{}, fmt.Errorf("crop size must be positive: %dx%d", width, height)
	}
	return image.Rect(x, y, x+width, y+height), nil
}
