package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode     bool   `env:"DEBUG_MODE"`      //Режим дебага
	Model         string `env:"OPENAI_MODEL"`    // Модель с поддержкой картинок
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"` // Адрес API; пусто = адрес по умолчанию из SDK
	MaxTokens     int    `env:"MAX_TOKENS"`      // Лимит токенов ответа
	UseStubClient bool   `env:"USE_STUB_CLIENT"` // Не ходить в OpenAI, отвечать заглушкой

	// Картинки
	ImageMIME      string `env:"IMAGE_MIME"`       // MIME в data URL; пусто = определять по содержимому
	ImageMaxWidth  int    `env:"IMAGE_MAX_WIDTH"`  // Уменьшать картинку до этой ширины; 0 = не трогать
	ImageMaxPixels int    `env:"IMAGE_MAX_PIXELS"` // Картинки большей площади не раскодируются
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES"` // Максимальный размер загружаемого файла

	HTTP HTTPConfig
}

// HTTPConfig конфигурация веб-интерфейса.
type HTTPConfig struct {
	BindAddr string `env:"HTTP_BIND_ADDR"` // Адрес слушателя, напр. 127.0.0.1:8501
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode: false,
		Model:     "gpt-4o",
		MaxTokens: 500,
		// todo: реальный формат загрузки игнорируется, png тоже уходит как jpeg; уточнить, нужно ли это
		ImageMIME:      "image/jpeg",
		ImageMaxWidth:  0,
		ImageMaxPixels: 40_000_000,
		MaxUploadBytes: 20 << 20,
		HTTP: HTTPConfig{
			BindAddr: "127.0.0.1:8501",
		},
	}
}

// NewConfig загружает конфигурацию приложения из .env, окружения и флагов командной строки.
// Флаги конкретной команды нужно объявить до вызова: здесь выполняется flag.Parse.
func NewConfig() *Config {
	cfg, err := Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load собирает конфигурацию: дефолты -> .env -> окружение -> флаги из args.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "модель OpenAI с поддержкой изображений")
	fs.StringVar(&cfg.OpenAIBaseURL, "openai-base-url", cfg.OpenAIBaseURL, "адрес OpenAI API (пусто = по умолчанию)")
	fs.IntVar(&cfg.MaxTokens, "max-tokens", cfg.MaxTokens, "максимум токенов в ответе модели")
	fs.BoolVar(&cfg.UseStubClient, "use-stub-client", cfg.UseStubClient, "отвечать заглушкой без запросов в OpenAI")
	fs.StringVar(&cfg.ImageMIME, "image-mime", cfg.ImageMIME, "MIME-тип картинки в data URL; пусто = определять по содержимому")
	fs.IntVar(&cfg.ImageMaxWidth, "image-max-width", cfg.ImageMaxWidth, "уменьшать картинку до этой ширины перед отправкой (0 = не уменьшать)")
	fs.IntVar(&cfg.ImageMaxPixels, "image-max-pixels", cfg.ImageMaxPixels, "максимальная площадь картинки в пикселях (ширина*высота)")
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload-bytes", cfg.MaxUploadBytes, "максимальный размер загружаемого файла, байт")
	fs.StringVar(&cfg.HTTP.BindAddr, "http-bind-addr", cfg.HTTP.BindAddr, "адрес веб-интерфейса (напр. 127.0.0.1:8501)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.ImageMIME = strings.TrimSpace(cfg.ImageMIME)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, без которых приложение не сможет работать.
func (c *Config) Validate() error {
	var errs []error
	if c.Model == "" {
		errs = append(errs, errors.New("model is empty"))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens))
	}
	if c.ImageMaxWidth < 0 {
		errs = append(errs, fmt.Errorf("image max width must not be negative, got %d", c.ImageMaxWidth))
	}
	if c.ImageMaxPixels <= 0 {
		errs = append(errs, fmt.Errorf("image max pixels must be positive, got %d", c.ImageMaxPixels))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.ImageMIME != "" && !strings.HasPrefix(c.ImageMIME, "image/") {
		errs = append(errs, fmt.Errorf("image mime must be an image type, got %q", c.ImageMIME))
	}
	return errors.Join(errs...)
}
