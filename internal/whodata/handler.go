package whodata

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"medrecord-backend/internal/shared/server/respond"
)

const maxUploadBytes = 5 << 20 // 5 MiB

// Handler wires HTTP handlers to the WHO data service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches WHO data routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload-who-data", h.upload)
	rg.GET("/who-data", h.list)
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

	result, err := h.Svc.Upload(c.Request.Context(), f)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), gin.H{"row_errors": result.RowErrors})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store indicator data", nil)
		return
	}

	respond.OK(c, result)
}

func (h *Handler) list(c *gin.Context) {
	var f Filter
	f.Country = c.Query("country")
	f.Indicator = c.Query("indicator")
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "year must be an integer", nil)
			return
		}
		f.Year = year
	}

	recs, err := h.Svc.List(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list indicator data", nil)
		return
	}
	if recs == nil {
		recs = []WHORecord{}
	}
	respond.OK(c, gin.H{"count": len(recs), "data": recs})
}
