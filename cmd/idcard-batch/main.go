package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"idcard-extractor/internal/common"
	"idcard-extractor/internal/export"
	"idcard-extractor/internal/imaging"
	"idcard-extractor/internal/llm/openrouter"
	"idcard-extractor/internal/pipeline"
)

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// idcard-batch processes a directory of images through the full pipeline and
// writes an XLSX report. Models come from IDCARD_DETECTION_MODEL,
// IDCARD_LOCALIZATION_MODEL, and IDCARD_OCR_MODEL.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 || len(os.Args) > 3 {
		logger.Error("usage", "cmd", "idcard-batch <image-dir> [out.xlsx]")
		os.Exit(2)
	}
	dir := os.Args[1]
	outPath := "idcard-results.xlsx"
	if len(os.Args) == 3 {
		outPath = os.Args[2]
	}

	models := pipeline.Models{
		Detection:    os.Getenv("IDCARD_DETECTION_MODEL"),
		Localization: os.Getenv("IDCARD_LOCALIZATION_MODEL"),
		OCR:          os.Getenv("IDCARD_OCR_MODEL"),
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	images, err := loadImages(dir)
	if err != nil {
		logger.Error("load images", "dir", dir, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded images", "dir", dir, "count", len(images))

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

	result, err := coordinator.Process(ctx, images, models)
	if err != nil {
		logger.Error("batch processing failed", "error", err)
		os.Exit(1)
	}

	data, err := export.NewService(logger).ResultsXLSX(result.Results)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logger.Error("write report", "path", outPath, "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"total", result.Summary.Total,
		"successful", result.Summary.Successful,
		"failed", result.Summary.Failed,
		"elapsed_ms", result.Summary.ProcessingTimeMS,
		"report", outPath,
	)
}

func loadImages(dir string) ([]pipeline.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var images []pipeline.Image
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if _, ok := imageExts[ext]; !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		images = append(images, pipeline.Image{Name: e.Name(), Data: data})
	}
	return images, nil
}
