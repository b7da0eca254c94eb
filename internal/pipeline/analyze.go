package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"idcard-extractor/internal/common"
	"idcard-extractor/internal/imaging"
	"idcard-extractor/internal/llm"
)

// Analyzer is the simple batch mode: one free-form prompt per image, no
// staged pipeline. Images are processed in fixed-size concurrency waves with
// the same all-complete-before-next-wave discipline as the field reads.
type Analyzer struct {
	invoker   llm.Invoker
	waveSize  int
	maxPhotos int
	logger    *slog.Logger
}

func NewAnalyzer(inv llm.Invoker, waveSize, maxPhotos int, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if waveSize < 1 {
		waveSize = 5
	}
	if maxPhotos <= 0 {
		maxPhotos = 100
	}
	return &Analyzer{invoker: inv, waveSize: waveSize, maxPhotos: maxPhotos, logger: logger}
}

// PhotoAnalysis is one image's outcome in simple batch mode.
type PhotoAnalysis struct {
	PhotoName        string    `json:"photoName"`
	Prompt           string    `json:"prompt"`
	Response         string    `json:"response,omitempty"`
	Model            string    `json:"model,omitempty"`
	Usage            llm.Usage `json:"usage,omitempty"`
	Success          bool      `json:"success"`
	Error            string    `json:"error,omitempty"`
	ProcessingTimeMS int64     `json:"processingTimeMs"`
}

// BatchAnalysis pairs per-photo outcomes with the summary fold.
type BatchAnalysis struct {
	Results []PhotoAnalysis `json:"results"`
	Summary BatchSummary    `json:"summary"`
}

// AnalyzePhotos sends the same prompt with each image to one model. Item
// failures are absorbed into their result; only up-front validation errors
// escape.
func (a *Analyzer) AnalyzePhotos(ctx context.Context, photos []Image, model, prompt, system string) (BatchAnalysis, error) {
	if len(photos) == 0 {
		return BatchAnalysis{}, fmt.Errorf("photos array is required and must not be empty: %w", common.ErrValidation)
	}
	if len(photos) > a.maxPhotos {
		return BatchAnalysis{}, fmt.Errorf("maximum %d photos allowed per batch: %w", a.maxPhotos, common.ErrValidation)
	}
	if model == "" {
		return BatchAnalysis{}, fmt.Errorf("model is required: %w", common.ErrValidation)
	}
	if prompt == "" {
		return BatchAnalysis{}, fmt.Errorf("prompt is required: %w", common.ErrValidation)
	}

	start := time.Now()
	results := RunWaves(ctx, photos, a.waveSize, func(ctx context.Context, photo Image) PhotoAnalysis {
		itemStart := time.Now()
		resp, err := a.invoker.Invoke(ctx, llm.Request{
			Prompt:       prompt,
			ImageDataURL: imaging.ToDataURL(photo.Data),
			Model:        model,
			System:       system,
		})
		if err != nil {
			a.logger.Warn("analyze.photo.failed", "photo", photo.Name, "error", err)
			return PhotoAnalysis{
				PhotoName:        photo.Name,
				Prompt:           prompt,
				Error:            err.Error(),
				ProcessingTimeMS: time.Since(itemStart).Milliseconds(),
			}
		}
		return PhotoAnalysis{
			PhotoName:        photo.Name,
			Prompt:           prompt,
			Response:         resp.Text,
			Model:            resp.Model,
			Usage:            resp.Usage,
			Success:          true,
			ProcessingTimeMS: time.Since(itemStart).Milliseconds(),
		}
	})

	summary := BatchSummary{Total: len(results), ProcessingTimeMS: time.Since(start).Milliseconds()}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	return BatchAnalysis{Results: results, Summary: summary}, nil
}
