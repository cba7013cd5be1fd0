package main

import (
	"ImageAnalyst/internal/adapter/web"
	"ImageAnalyst/internal/ai"
	"ImageAnalyst/internal/app/analyst"
	"ImageAnalyst/internal/config"
	"ImageAnalyst/internal/logger"
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Веб-интерфейс анализа изображений: ключ, промпт, загрузка, обрезка, ответ модели.
func main() {
	cfg := config.NewConfig()

	log, err := logger.New(cfg.DebugMode)
	if err != nil {
		panic(err)
	}
	sugar := log.Sugar()
	//сброс буфера логгера
	defer func() {
		_ = log.Sync()
	}()

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"Model", cfg.Model,
		"MaxTokens", cfg.MaxTokens,
		"ImageMIME", cfg.ImageMIME,
		"Stub", cfg.UseStubClient,
	)

	var client ai.Client = ai.NewVisionClient(cfg)
	if cfg.UseStubClient {
		client = ai.NewStubClient("")
	}

	srv := web.New(cfg, analyst.New(cfg, client, sugar), sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		sugar.Errorw("failed to start web ui", "error", err)
		return
	}
	<-ctx.Done()

	if err := srv.Stop(context.Background()); err != nil {
		sugar.Warnw("web ui stop error", "error", err)
	}
	sugar.Infow("app stopped")
}
