package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/service"
	"github.com/noah-isme/studydesk-api/pkg/middleware/usercontext"
	"github.com/noah-isme/studydesk-api/pkg/response"
)

type exportService interface {
	Request(ctx context.Context, req service.CreateExportRequest, requestedBy string) (*dto.ExportJobResponse, error)
	Status(ctx context.Context, id string) (*dto.ExportJobResponse, error)
	Open(ctx context.Context, token string) (*service.Download, error)
}

// ExportHandler exposes asynchronous export endpoints.
type ExportHandler struct {
	exports exportService
	logger  *zap.Logger
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{exports: exports, logger: logger}
}

// Create godoc
// @Summary Request export
// @Description Queues a CSV or PDF export of grades or assignments
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body service.CreateExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req service.CreateExportRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	job, err := h.exports.Request(c.Request.Context(), req, usercontext.Subject(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Export status
// @Tags Exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	job, err := h.exports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}

// Download godoc
// @Summary Download export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.exports.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		h.logger.Error("stat export file", zap.Error(err))
		response.Error(c, err)
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), download.ContentType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, download.Filename),
		"Cache-Control":       "no-store",
	})
}
