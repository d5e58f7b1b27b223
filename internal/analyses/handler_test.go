package analyses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"medrecord-backend/internal/records"
)

func setupHandler(t *testing.T, client *stubLLM) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &Service{
		Records:  records.NewMemoryRepo(),
		Repo:     NewMemoryRepo(),
		Analyzer: NewAnalyzer(client),
	}
	r := gin.New()
	api := r.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func TestAnalyzeRecordEndpoint(t *testing.T) {
	r := setupHandler(t, &stubLLM{responses: []string{validPayload}})

	body := `{
		"patient_info": {"patient_id": "p9", "name": "Jane", "age": 41, "gender": "Female"},
		"symptoms": {"primary_symptoms": ["fever", "cough"], "severity": "moderate"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-record", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var result AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.PatientID != "p9" || len(result.SuspectedConditions) == 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestAnalyzeRecordRejectsMissingSymptoms(t *testing.T) {
	r := setupHandler(t, &stubLLM{responses: []string{validPayload}})

	body := `{"patient_info": {"patient_id": "p9", "age": 41, "gender": "Female"}, "symptoms": {"primary_symptoms": []}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-record", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetResultRoundTrip(t *testing.T) {
	r := setupHandler(t, &stubLLM{responses: []string{validPayload}})

	body := `{
		"patient_info": {"patient_id": "p10", "age": 55, "gender": "Male"},
		"symptoms": {"primary_symptoms": ["dizziness"]}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-record", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/analysis-result/p10", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
}

func TestGetResultNotFound(t *testing.T) {
	r := setupHandler(t, &stubLLM{responses: []string{validPayload}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis-result/ghost", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
