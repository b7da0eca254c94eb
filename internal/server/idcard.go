package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"idcard-extractor/internal/common"
	"idcard-extractor/internal/imaging"
	"idcard-extractor/internal/pipeline"
)

// PhotoPayload is one uploaded image: a name plus a base64 payload, with or
// without a data URL prefix.
type PhotoPayload struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// ProcessIDCardsRequest is the batch entry point's wire shape.
type ProcessIDCardsRequest struct {
	Photos []PhotoPayload  `json:"photos"`
	Models pipeline.Models `json:"models"`
}

// ProcessIDCards runs the staged extraction for a batch of photos. The call
// fails up front on a malformed batch; after that it always returns the
// results+summary shape, with individual failures inside.
func (s *Server) ProcessIDCards(c *fiber.Ctx) error {
	var req ProcessIDCardsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	images, err := decodePhotos(req.Photos)
	if err != nil {
		return badRequest(c, err.Error())
	}

	s.logger.Info("idcard.process.request",
		"photos", len(images),
		"detection_model", req.Models.Detection,
		"localization_model", req.Models.Localization,
		"ocr_model", req.Models.OCR,
	)

	result, err := s.coordinator.Process(c.Context(), images, req.Models)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return badRequest(c, err.Error())
		}
		s.logger.Error("idcard.process.failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "processing failed",
		})
	}
	return c.JSON(result)
}

// RecommendedModels returns the curated per-stage model lists.
func (s *Server) RecommendedModels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"detection": []string{
			"google/gemini-pro-vision",
			"google/gemini-flash-1.5",
			"anthropic/claude-3-haiku",
		},
		"localization": []string{
			"anthropic/claude-3-opus",
			"anthropic/claude-3.5-sonnet",
			"openai/gpt-4-vision-preview",
			"google/gemini-pro-vision",
		},
		"ocr": []string{
			"google/gemini-pro-vision",
			"google/gemini-flash-1.5",
			"anthropic/claude-3-sonnet",
			"openai/gpt-4o",
		},
	})
}

func decodePhotos(photos []PhotoPayload) ([]pipeline.Image, error) {
	images := make([]pipeline.Image, 0, len(photos))
	for _, p := range photos {
		v := common.NewValidator()
		v.Field("name", p.Name, common.Required)
		v.Field("data", p.Data, common.Required)
		if v.HasErrors() {
			return nil, v.Error()
		}
		data, err := imaging.DecodePayload(p.Data)
		if err != nil {
			return nil, common.WrapError(common.ErrValidation, "photo '"+p.Name+"'")
		}
		images = append(images, pipeline.Image{Name: p.Name, Data: data})
	}
	return images, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
