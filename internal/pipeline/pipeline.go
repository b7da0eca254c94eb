package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"idcard-extractor/constants"
	"idcard-extractor/internal/imaging"
)

// Config holds the per-item pipeline tunables.
type Config struct {
	// MinDetectionConfidence is the detect gate; a confidence exactly equal
	// to the threshold passes.
	MinDetectionConfidence float64
	// OCRConcurrency caps simultaneous field reads within one image.
	OCRConcurrency int
	// MaxImageWidth bounds the payload sent to the vision models; 0 disables
	// the resize guard.
	MaxImageWidth int
}

// Pipeline drives one image through detect, localize, crop, and read, in
// that strict order. Item-level failures become a Failure ItemResult;
// field-level failures degrade to absent crops or zero-value readings and
// never fail the item.
type Pipeline struct {
	stages  *StageInvoker
	cropper *imaging.Cropper
	codec   imaging.Codec
	cfg     Config
	logger  *slog.Logger
}

func NewPipeline(stages *StageInvoker, cropper *imaging.Cropper, codec imaging.Codec, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinDetectionConfidence <= 0 {
		cfg.MinDetectionConfidence = 70
	}
	if cfg.OCRConcurrency <= 0 {
		cfg.OCRConcurrency = 10
	}
	return &Pipeline{stages: stages, cropper: cropper, codec: codec, cfg: cfg, logger: logger}
}

// ProcessImage runs the full staged extraction for one image and always
// returns exactly one ItemResult; it never panics an error across the item
// boundary.
func (p *Pipeline) ProcessImage(ctx context.Context, img Image, models Models) ItemResult {
	start := time.Now()

	// The vision models get a width-bounded copy; crops always come from the
	// original buffer, since boxes are normalized.
	visionData := img.Data
	if p.cfg.MaxImageWidth > 0 {
		resized, err := p.codec.Resize(img.Data, p.cfg.MaxImageWidth)
		if err != nil {
			p.logger.Warn("pipeline.resize_failed", "image", img.Name, "error", err)
		} else {
			visionData = resized
		}
	}
	imageURL := imaging.ToDataURL(visionData)

	p.logger.Info("pipeline.detect.start", "image", img.Name, "model", models.Detection)
	det, err := p.stages.Detect(ctx, imageURL, models.Detection)
	if err != nil {
		p.logger.Error("pipeline.detect.failed", "image", img.Name, "error", err)
		return failureResult(img.Name, err.Error(), time.Since(start))
	}

	if !det.IsDocument || det.Confidence < p.cfg.MinDetectionConfidence {
		msg := fmt.Sprintf("Not a valid document (confidence: %v%%)", det.Confidence)
		p.logger.Info("pipeline.detect.rejected",
			"image", img.Name, "is_document", det.IsDocument, "confidence", det.Confidence)
		return failureResult(img.Name, msg, time.Since(start))
	}

	p.logger.Info("pipeline.localize.start",
		"image", img.Name, "model", models.Localization, "document_type", det.DocumentType)
	regions, err := p.stages.Localize(ctx, imageURL, models.Localization, det.DocumentType)
	if err != nil {
		p.logger.Error("pipeline.localize.failed", "image", img.Name, "error", err)
		return failureResult(img.Name, err.Error(), time.Since(start))
	}

	crops := p.cropRegions(img, regions)
	readings := p.readFields(ctx, img.Name, crops, models.OCR)

	p.logger.Info("pipeline.item.ok",
		"image", img.Name,
		"document_type", det.DocumentType,
		"cropped_fields", len(crops),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return assembleResult(img.Name, det, readings, time.Since(start))
}

// cropRegions attempts one crop per supported field. Absent or invalid boxes
// and crop failures yield no entry for that field; this step cannot fail the
// item.
func (p *Pipeline) cropRegions(img Image, regions map[string]Region) map[string][]byte {
	crops := make(map[string][]byte)
	for _, name := range constants.SupportedFields {
		region := regions[name]
		if region.Box == nil {
			continue
		}
		cropped, err := p.cropper.Crop(img.Data, *region.Box)
		if err != nil {
			p.logger.Warn("pipeline.crop.failed", "image", img.Name, "field", name, "error", err)
			continue
		}
		crops[name] = cropped
	}
	return crops
}

// readFields fans the per-field OCR calls out in fixed-size waves. Fields
// without a crop get the zero-value reading without any invocation; read
// failures degrade to the same default.
func (p *Pipeline) readFields(ctx context.Context, imageName string, crops map[string][]byte, model string) map[string]FieldReading {
	type fieldOutcome struct {
		name    string
		reading FieldReading
	}

	outcomes := RunWaves(ctx, constants.SupportedFields, p.cfg.OCRConcurrency,
		func(ctx context.Context, name string) fieldOutcome {
			cropped, ok := crops[name]
			if !ok {
				return fieldOutcome{name: name}
			}
			reading, err := p.stages.ReadText(ctx, imaging.ToDataURL(cropped), name, model)
			if err != nil {
				p.logger.Warn("pipeline.read.failed", "image", imageName, "field", name, "error", err)
				return fieldOutcome{name: name}
			}
			return fieldOutcome{name: name, reading: reading}
		})

	readings := make(map[string]FieldReading, len(outcomes))
	for _, o := range outcomes {
		readings[o.name] = o.reading
	}
	return readings
}

func assembleResult(name string, det DetectionOutcome, readings map[string]FieldReading, elapsed time.Duration) ItemResult {
	primary := readings[constants.FieldDateOfBirthPrimary]
	secondary := readings[constants.FieldDateOfBirthSecondary]

	dob := FieldReading{Text: primary.Text, Confidence: primary.Confidence}
	if dob.Text == "" {
		dob.Text = secondary.Text
	}
	// Confidence is the max of both readings regardless of which text won;
	// exports and the frontend treat it as overall date-of-birth certainty.
	if secondary.Confidence > dob.Confidence {
		dob.Confidence = secondary.Confidence
	}

	return ItemResult{
		ImageName:           name,
		Success:             true,
		DetectionConfidence: det.Confidence,
		DocumentType:        det.DocumentType,
		Fields:              readings,
		DateOfBirth:         dob,
		ProcessingTimeMS:    elapsed.Milliseconds(),
	}
}
