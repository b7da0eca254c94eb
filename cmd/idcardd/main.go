package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"idcard-extractor/internal/common"
	"idcard-extractor/internal/export"
	"idcard-extractor/internal/imaging"
	"idcard-extractor/internal/llm/openrouter"
	"idcard-extractor/internal/pipeline"
	"idcard-extractor/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	invoker := openrouter.NewClient(openrouter.Config{
		APIKey:  cfg.OpenRouter.APIKey,
		BaseURL: cfg.OpenRouter.BaseURL,
		Referer: cfg.OpenRouter.Referer,
		Title:   cfg.OpenRouter.Title,
		Timeout: cfg.OpenRouter.Timeout,
	}, logger)

	codec := imaging.NewStdCodec()
	cropper := imaging.NewCropper(codec, logger)
	stages := pipeline.NewStageInvoker(invoker, pipeline.StageTimeouts{
		Detect:   cfg.IDCard.DetectionTimeout,
		Localize: cfg.IDCard.LocalizationTimeout,
		Read:     cfg.IDCard.OCRTimeout,
	}, logger)
	pl := pipeline.NewPipeline(stages, cropper, codec, pipeline.Config{
		MinDetectionConfidence: float64(cfg.IDCard.MinDetectionConfidence),
		OCRConcurrency:         cfg.IDCard.OCRConcurrency,
		MaxImageWidth:          cfg.IDCard.MaxImageWidth,
	}, logger)
	coordinator := pipeline.NewCoordinator(pl, cfg.IDCard.PipelineConcurrency, cfg.IDCard.MaxPhotos, logger)
	analyzer := pipeline.NewAnalyzer(invoker, cfg.Batch.MaxConcurrent, cfg.Batch.MaxPhotos, logger)
	exporter := export.NewService(logger)

	srv := server.NewServer(coordinator, analyzer, exporter, logger)
	app := server.NewApp(srv, cfg.Server)

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := app.Listen(cfg.Server.Addr); err != nil {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
