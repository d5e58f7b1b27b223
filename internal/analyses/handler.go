package analyses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medrecord-backend/internal/records"
	"medrecord-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches single-record analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze-record", h.analyzeRecord)
	rg.GET("/analysis-result/:patientId", h.getResult)
}

func (h *Handler) analyzeRecord(c *gin.Context) {
	var record records.MedicalRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid medical record payload", nil)
		return
	}
	c.Set("patientId", record.PatientInfo.PatientID)

	result, err := h.Svc.AnalyzeRecord(c.Request.Context(), record)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRecord):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze record", nil)
		}
		return
	}

	respond.OK(c, result)
}

func (h *Handler) getResult(c *gin.Context) {
	patientID := c.Param("patientId")
	if patientID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "patient id is required", nil)
		return
	}
	c.Set("patientId", patientID)

	result, err := h.Svc.Result(c.Request.Context(), patientID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no analysis found for patient", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	respond.OK(c, result)
}
