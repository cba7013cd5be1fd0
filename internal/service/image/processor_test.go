package image

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradientPNG картинка w×h, где цвет пикселя кодирует его координаты.
func gradientPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// oversizedPNG только сигнатура и IHDR: заголовок обещает w×h серых пикселей, данных нет.
func oversizedPNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // бит на канал, остальное: серый, без чересстрочности

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(ihdr)))
	buf.Write(length[:])
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(chunk))
	buf.Write(crc[:])
	return buf.Bytes()
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, MimePNG, DetectMIME(gradientPNG(t, 2, 2)))
	assert.Equal(t, MimeJPEG, DetectMIME(solidJPEG(t, 2, 2)))
	assert.False(t, Supported(DetectMIME([]byte("GIF89a......"))))
}

func TestDecodeRejectsUnsupported(t *testing.T) {
	_, _, err := Decode([]byte("just some text"), DefaultMaxPixels)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, _, err = Decode(nil, DefaultMaxPixels)
	assert.Error(t, err)
}

func TestCrop(t *testing.T) {
	src := gradientPNG(t, 10, 8)
	rect, err := CropRect(2, 3, 4, 2)
	require.NoError(t, err)

	out, err := Crop(src, rect, DefaultMaxPixels)
	require.NoError(t, err)
	assert.Equal(t, MimePNG, DetectMIME(out))

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	r, g, _, _ := img.At(0, 0).RGBA()
	assert.EqualValues(t, 2, r>>8)
	assert.EqualValues(t, 3, g>>8)
}

func TestCropClampsToBounds(t *testing.T) {
	out, err := Crop(gradientPNG(t, 10, 8), image.Rect(6, 6, 100, 100), DefaultMaxPixels)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
}

func TestCropOutsideImage(t *testing.T) {
	_, err := Crop(gradientPNG(t, 10, 8), image.Rect(20, 20, 30, 30), DefaultMaxPixels)
	assert.Error(t, err)
}

func TestParseCrop(t *testing.T) {
	rect, err := ParseCrop("1, 2, 30, 40")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(1, 2, 31, 42), rect)

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "0,0,0,10", "-1,0,5,5"} {
		_, err := ParseCrop(bad)
		assert.Error(t, err, bad)
	}
}

func TestProcessorKeepsBytesWhenNarrowEnough(t *testing.T) {
	src := gradientPNG(t, 10, 8)

	for _, maxWidth := range []int{0, 10, 64} {
		out, err := NewProcessor(maxWidth, DefaultMaxPixels).Process(src)
		require.NoError(t, err)
		assert.Equal(t, src, out.Data)
		assert.Equal(t, 10, out.Width)
		assert.Equal(t, MimePNG, out.MimeType)
	}
}

func TestProcessorDownscales(t *testing.T) {
	out, err := NewProcessor(40, DefaultMaxPixels).Process(solidJPEG(t, 200, 100))
	require.NoError(t, err)

	assert.Equal(t, 40, out.Width)
	assert.Equal(t, 20, out.Height)
	assert.Equal(t, MimeJPEG, out.MimeType)

	img, err := jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
}

func TestDecodeConfigRejectsOversizedImages(t *testing.T) {
	bomb := oversizedPNG(16000, 16000)
	require.Equal(t, MimePNG, DetectMIME(bomb))

	_, _, err := DecodeConfig(bomb, DefaultMaxPixels)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Contains(t, err.Error(), "16000x16000")

	_, _, err = Decode(bomb, DefaultMaxPixels)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = Crop(bomb, image.Rect(0, 0, 10, 10), DefaultMaxPixels)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	cfg, _, err := DecodeConfig(gradientPNG(t, 10, 8), 80)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
	_, _, err = DecodeConfig(gradientPNG(t, 10, 8), 79)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestProcessorChecksSizeWithoutDecoding(t *testing.T) {
	for _, maxWidth := range []int{0, 100} {
		_, err := NewProcessor(maxWidth, DefaultMaxPixels).Process(oversizedPNG(16000, 16000))
		assert.ErrorIs(t, err, ErrImageTooLarge, "maxWidth=%d", maxWidth)
	}

	// без уменьшения хватает заголовка: пиксельных данных в файле нет вовсе
	out, err := NewProcessor(0, 0).Process(oversizedPNG(3000, 2000))
	require.NoError(t, err)
	assert.Equal(t, 3000, out.Width)
	assert.Equal(t, 2000, out.Height)
	assert.Equal(t, MimePNG, out.MimeType)
}
