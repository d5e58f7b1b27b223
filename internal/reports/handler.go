package reports

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medrecord-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the report service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches doctor report routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/doctor-report", h.generate)
	rg.GET("/doctor-report/:reportId", h.get)
}

type generateRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid report request payload", nil)
		return
	}
	c.Set("patientId", req.PatientID)

	report, err := h.Svc.Generate(c.Request.Context(), req.PatientID, req.DoctorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNoAnalysis):
			respond.Error(c, http.StatusNotFound, "not_found", "no analysis found for patient", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate report", nil)
		}
		return
	}

	respond.OK(c, report)
}

func (h *Handler) get(c *gin.Context) {
	reportID := c.Param("reportId")

	report, err := h.Svc.Get(c.Request.Context(), reportID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "report not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch report", nil)
		return
	}

	respond.OK(c, report)
}
