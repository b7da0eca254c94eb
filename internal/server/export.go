package server

import (
	"github.com/gofiber/fiber/v2"

	"idcard-extractor/internal/pipeline"
)

// ExportResultsRequest carries previously returned batch results back for
// rendering; nothing is reprocessed.
type ExportResultsRequest struct {
	Results []pipeline.ItemResult `json:"results"`
}

// ExportResults renders batch results as an XLSX attachment.
func (s *Server) ExportResults(c *fiber.Ctx) error {
	var req ExportResultsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.Results) == 0 {
		return badRequest(c, "results array is required and must not be empty")
	}

	data, err := s.exporter.ResultsXLSX(req.Results)
	if err != nil {
		s.logger.Error("idcard.export.failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "export failed",
		})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="idcard-results.xlsx"`)
	return c.Send(data)
}
