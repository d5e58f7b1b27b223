package batches

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medrecord-backend/internal/shared/server/middleware"
	"medrecord-backend/internal/shared/server/respond"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// Handler wires HTTP handlers to the batch service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches batch routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload-analyze-csv", h.upload)
	rg.GET("/batch-analysis-status/:batchId", h.status)
	rg.GET("/batch-results/:batchId", h.results)
	rg.GET("/batch-results/:batchId/download", h.download)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart field 'file' is required", nil)
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		respond.Error(c, http.StatusBadRequest, "validation_error", "only .csv uploads are supported", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	requestID := middleware.RequestIDFromContext(c)

	job, err := h.Svc.Submit(c.Request.Context(), userID, fileHeader.Filename, data, requestID)
	if err != nil {
		var subErr *SubmissionError
		if errors.As(err, &subErr) {
			respond.Error(c, http.StatusBadRequest, subErr.Code, subErr.Message, gin.H{"errors": job.Errors})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit batch", nil)
		return
	}
	c.Set("batchId", job.BatchID)

	respond.JSON(c, http.StatusAccepted, gin.H{
		"batch_id":      job.BatchID,
		"status":        job.Status,
		"total_records": job.TotalRecords,
		"message":       "batch accepted for processing",
	})
}

func (h *Handler) status(c *gin.Context) {
	batchID := c.Param("batchId")
	c.Set("batchId", batchID)

	job, err := h.Svc.Status(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "batch not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch batch status", nil)
		return
	}

	respond.OK(c, gin.H{
		"batch_id":          job.BatchID,
		"status":            job.Status,
		"total_records":     job.TotalRecords,
		"processed_records": job.ProcessedRecords,
		"errors":            job.Errors,
		"created_at":        job.CreatedAt,
		"completed_at":      job.CompletedAt,
	})
}

func (h *Handler) results(c *gin.Context) {
	batchID := c.Param("batchId")
	c.Set("batchId", batchID)

	rs, err := h.Svc.Results(c.Request.Context(), batchID)
	if err != nil {
		h.resultsError(c, err)
		return
	}
	respond.OK(c, rs)
}

func (h *Handler) download(c *gin.Context) {
	batchID := c.Param("batchId")
	c.Set("batchId", batchID)

	format := c.DefaultQuery("format", "csv")
	if format != "csv" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unsupported download format", gin.H{"format": format})
		return
	}

	rs, err := h.Svc.Results(c.Request.Context(), batchID)
	if err != nil {
		h.resultsError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"batch_%s_results.csv\"", batchID))
	c.Status(http.StatusOK)
	if err := WriteResultsCSV(c.Writer, rs); err != nil {
		// Headers are already out; nothing useful left to send.
		_ = c.Error(err)
	}
}

func (h *Handler) resultsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "batch not found", nil)
	case errors.Is(err, ErrNotReady):
		respond.Error(c, http.StatusConflict, "not_ready", "batch is still processing", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch batch results", nil)
	}
}
