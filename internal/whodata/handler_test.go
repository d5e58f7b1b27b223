package whodata

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupWHORouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(NewService(NewMemoryRepo())).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postIndicatorCSV(t *testing.T, router *gin.Engine, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "who.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-who-data", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadWHODataAndList(t *testing.T) {
	router := setupWHORouter(t)

	w := postIndicatorCSV(t, router, "country,year,indicator,value\nKenya,2021,Life expectancy,66.1\n")
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/who-data?country=Kenya&year=2021", nil)
	lw := httptest.NewRecorder()
	router.ServeHTTP(lw, req)
	if lw.Code != http.StatusOK {
		t.Fatalf("list status = %d", lw.Code)
	}

	var resp struct {
		Count int         `json:"count"`
		Data  []WHORecord `json:"data"`
	}
	if err := json.Unmarshal(lw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Data[0].Country != "Kenya" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestUploadWHODataBadColumns(t *testing.T) {
	router := setupWHORouter(t)

	w := postIndicatorCSV(t, router, "a,b\n1,2\n")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestListWHODataBadYear(t *testing.T) {
	router := setupWHORouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/who-data?year=soon", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
