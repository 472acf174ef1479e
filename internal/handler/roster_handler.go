package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-seating-api/internal/dto"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
	"github.com/noah-isme/sma-seating-api/pkg/response"
)

const maxRosterUpload = 10 << 20

type rosterImporter interface {
	Import(ctx context.Context, r io.Reader) (*dto.RosterImportResult, error)
}

// RosterHandler accepts roster spreadsheets.
type RosterHandler struct {
	importer rosterImporter
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(importer rosterImporter) *RosterHandler {
	return &RosterHandler{importer: importer}
}

// Import godoc
// @Summary Import students from an xlsx roster
// @Tags Roster
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Roster workbook (ID, Name, Class, House)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /roster/import [post]
func (h *RosterHandler) Import(c *gin.Context) {
	if h.importer == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "roster import not configured"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xlsx") {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "roster must be an .xlsx workbook"))
		return
	}
	if fileHeader.Size > maxRosterUpload {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "roster file too large"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	result, err := h.importer.Import(c.Request.Context(), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
