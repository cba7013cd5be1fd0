package main

import (
	"ImageAnalyst/internal/adapter/console"
	"ImageAnalyst/internal/ai"
	"ImageAnalyst/internal/app/analyst"
	"ImageAnalyst/internal/config"
	"ImageAnalyst/internal/logger"
	imgproc "ImageAnalyst/internal/service/image"
	"ImageAnalyst/internal/source/screen"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// noScreenshot значение флага -screenshot по умолчанию: картинка берётся из -image.
const noScreenshot = -2

// Коды выхода: 1 анализ не удался, 2 неверные входные данные.
const (
	exitOK = iota
	exitAnalysisFailed
	exitBadInput
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run возвращает код выхода; os.Exit вызывается только в main, чтобы отработали defer.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vision", flag.ContinueOnError)
	fs.SetOutput(stderr)
	imagePath := fs.String("image", "", "путь к картинке (jpg, png, jpeg)")
	prompt := fs.String("prompt", "", "текст запроса к модели (может быть пустым)")
	cropFlag := fs.String("crop", "", "обрезать картинку перед анализом: x,y,width,height")
	display := fs.Int("screenshot", noScreenshot, "вместо файла снять экран: номер монитора или -1 для всех")
	outPath := fs.String("out", "", "сохранить картинку, отправленную на анализ (после обрезки)")
	apiKey := fs.String("api-key", "", "API ключ OpenAI (по умолчанию из OPENAI_API_KEY)")
	plain := fs.Bool("plain", false, "вывод без цветов")

	cfg, err := config.Load(fs, args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadInput
	}

	log, err := logger.New(cfg.DebugMode)
	if err != nil {
		panic(err)
	}
	sugar := log.Sugar()
	defer func() {
		_ = log.Sync()
	}()

	upload, filename, err := readImage(*imagePath, *display)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read image: %v\n", err)
		return exitBadInput
	}

	sess := analyst.Session{
		Credential: *apiKey,
		Prompt:     *prompt,
		Upload:     upload,
		Filename:   filename,
	}
	if sess.Credential == "" {
		sess.Credential = os.Getenv("OPENAI_API_KEY")
	}
	if *cropFlag != "" {
		rect, err := imgproc.ParseCrop(*cropFlag)
		if err != nil {
			fmt.Fprintf(stderr, "invalid -crop: %v\n", err)
			return exitBadInput
		}
		sess.Crop = &rect
	}

	var client ai.Client = ai.NewVisionClient(cfg)
	if cfg.UseStubClient {
		client = ai.NewStubClient("")
	}
	a := analyst.New(cfg, client, sugar)

	if *outPath != "" {
		data, err := a.Cropped(sess)
		if err != nil {
			fmt.Fprintf(stderr, "failed to crop image: %v\n", err)
			return exitBadInput
		}
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			fmt.Fprintf(stderr, "failed to save image: %v\n", err)
			return exitBadInput
		}
		sugar.Infow("Image saved", "path", *outPath, "bytes", len(data))
	}

	printer, err := console.NewPrinter(stdout, stderr, *plain, 100)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadInput
	}

	res := a.Analyze(context.Background(), sess)
	if !printer.Print(res) {
		return exitAnalysisFailed
	}
	return exitOK
}

func readImage(path string, display int) ([]byte, string, error) {
	if display != noScreenshot {
		data, err := screen.Capture(display)
		return data, "screenshot.png", err
	}
	if path == "" {
		return nil, "", fmt.Errorf("-image or -screenshot is required")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return nil, "", fmt.Errorf("unsupported file type %q, use jpg, png or jpeg", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Base(path), nil
}
