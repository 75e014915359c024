package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/internal/service"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type daySheetService interface {
	DaySheet(ctx context.Context, barberID, date, format string, actor *models.JWTClaims) (*service.ExportFile, error)
}

// ExportHandler serves printable documents.
type ExportHandler struct {
	exports daySheetService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports daySheetService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// DaySheet godoc
// @Summary Printable agenda of a barber
// @Tags Exports
// @Produce text/csv,application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Barber ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Router /barbers/{id}/day-sheet [get]
func (h *ExportHandler) DaySheet(c *gin.Context) {
	file, err := h.exports.DaySheet(c.Request.Context(), c.Param("id"), c.Query("date"), c.DefaultQuery("format", "csv"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}
