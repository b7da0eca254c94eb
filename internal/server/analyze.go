package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"idcard-extractor/internal/common"
)

// ProcessBatchRequest is the simple batch mode's wire shape: one prompt, one
// model, many photos.
type ProcessBatchRequest struct {
	Photos       []PhotoPayload `json:"photos"`
	Model        string         `json:"model"`
	Prompt       string         `json:"prompt"`
	SystemPrompt string         `json:"systemPrompt"`
}

// ProcessBatchPhotos sends the same prompt with each photo to one model.
func (s *Server) ProcessBatchPhotos(c *fiber.Ctx) error {
	var req ProcessBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	images, err := decodePhotos(req.Photos)
	if err != nil {
		return badRequest(c, err.Error())
	}

	s.logger.Info("batch.analyze.request", "photos", len(images), "model", req.Model)

	result, err := s.analyzer.AnalyzePhotos(c.Context(), images, req.Model, req.Prompt, req.SystemPrompt)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return badRequest(c, err.Error())
		}
		s.logger.Error("batch.analyze.failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "processing failed",
		})
	}
	return c.JSON(result)
}
