package reports

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"medrecord-backend/internal/analyses"
)

func setupReportRouter(t *testing.T) (*gin.Engine, analyses.Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	analysesRepo := analyses.NewMemoryRepo()
	svc := NewService(analysesRepo, NewMemoryRepo(), &stubLLM{response: "Summary for the chart."})

	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router, analysesRepo
}

func TestDoctorReportRoundTrip(t *testing.T) {
	router, analysesRepo := setupReportRouter(t)
	seedAnalysis(t, analysesRepo)

	body := `{"patient_id":"P001","doctor_id":"D042"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/doctor-report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var report DoctorReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.ReportID == "" || report.PatientID != "P001" {
		t.Fatalf("report = %+v", report)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/doctor-report/"+report.ReportID, nil)
	gw := httptest.NewRecorder()
	router.ServeHTTP(gw, getReq)
	if gw.Code != http.StatusOK {
		t.Fatalf("get status = %d", gw.Code)
	}
}

func TestDoctorReportUnknownPatient(t *testing.T) {
	router, _ := setupReportRouter(t)

	body := `{"patient_id":"P404","doctor_id":"D042"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/doctor-report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestDoctorReportUnknownID(t *testing.T) {
	router, _ := setupReportRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctor-report/RPT_missing_0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
