package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"idcard-extractor/internal/common"
)

// Coordinator fans a batch of images out across pipeline runs under a wave
// cap and collects every outcome. With waveSize 1 (the default deployment
// setting) images run strictly one at a time, bounding the aggregate
// external call volume regardless of batch size.
type Coordinator struct {
	pipeline  *Pipeline
	waveSize  int
	maxPhotos int
	logger    *slog.Logger
}

func NewCoordinator(p *Pipeline, waveSize, maxPhotos int, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if waveSize < 1 {
		waveSize = 1
	}
	if maxPhotos <= 0 {
		maxPhotos = 50
	}
	return &Coordinator{pipeline: p, waveSize: waveSize, maxPhotos: maxPhotos, logger: logger}
}

// ValidateBatch rejects a malformed batch before any processing starts.
// Returned errors classify as common.ErrValidation.
func (c *Coordinator) ValidateBatch(images []Image, models Models) error {
	if len(images) == 0 {
		return fmt.Errorf("photos array is required and must not be empty: %w", common.ErrValidation)
	}
	if len(images) > c.maxPhotos {
		return fmt.Errorf("maximum %d photos allowed per batch: %w", c.maxPhotos, common.ErrValidation)
	}
	if models.Detection == "" || models.Localization == "" || models.OCR == "" {
		return fmt.Errorf("all three models (detection, localization, ocr) are required: %w", common.ErrValidation)
	}
	for i, img := range images {
		if img.Name == "" || len(img.Data) == 0 {
			return fmt.Errorf("photo %d must have name and data fields: %w", i, common.ErrValidation)
		}
	}
	return nil
}

// Process runs every image's pipeline and returns one ItemResult per input
// image, in input order, plus the summary fold. No single item's failure can
// abort the batch; only ValidateBatch errors escape to the caller.
func (c *Coordinator) Process(ctx context.Context, images []Image, models Models) (BatchResult, error) {
	if err := c.ValidateBatch(images, models); err != nil {
		return BatchResult{}, err
	}

	start := time.Now()
	c.logger.Info("batch.start",
		"photos", len(images),
		"wave_size", c.waveSize,
		"detection_model", models.Detection,
		"localization_model", models.Localization,
		"ocr_model", models.OCR,
	)

	results := RunWaves(ctx, images, c.waveSize, func(ctx context.Context, img Image) ItemResult {
		return c.pipeline.ProcessImage(ctx, img, models)
	})

	summary := Summarize(results, time.Since(start))
	c.logger.Info("batch.done",
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"elapsed_ms", summary.ProcessingTimeMS,
	)
	return BatchResult{Results: results, Summary: summary}, nil
}
