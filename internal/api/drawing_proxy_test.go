package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nvallur/sketchtran/internal/testutil"
)

// setupMockDrawingServer simulates the object store serving drawing images.
func setupMockDrawingServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/drawing.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake-image-data"))
	})

	mux.HandleFunc("/no-content-type.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write([]byte("jpeg-bytes"))
	})

	mux.HandleFunc("/expired", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("Request has expired"))
	})

	return httptest.NewServer(mux)
}

func TestHandleProxyDrawing(t *testing.T) {
	app, _ := testutil.SetupTestApp(t)
	router := NewServer(app).Router()

	mockStore := setupMockDrawingServer()
	defer mockStore.Close()

	t.Run("Success", func(t *testing.T) {
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/proxy/drawing?url=%s/drawing.png", mockStore.URL), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
		if contentType := rr.Header().Get("Content-Type"); contentType != "image/png" {
			t.Errorf("handler returned wrong content type: got %v want %v", contentType, "image/png")
		}
		if cacheControl := rr.Header().Get("Cache-Control"); !strings.Contains(cacheControl, "max-age=300") {
			t.Errorf("expected a short-lived cache header, got: %v", cacheControl)
		}
		if body := rr.Body.String(); body != "fake-image-data" {
			t.Errorf("handler returned wrong body: got %v", body)
		}
	})

	t.Run("Infers content type from extension", func(t *testing.T) {
		url := fmt.Sprintf("/api/proxy/drawing?url=%s/no-content-type.jpg", mockStore.URL)
		req, _ := http.NewRequest("GET", url, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if contentType := rr.Header().Get("Content-Type"); contentType != "image/jpeg" {
			t.Errorf("handler returned wrong content type: got %v want %v", contentType, "image/jpeg")
		}
	})

	t.Run("Missing url parameter", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/proxy/drawing", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
		}
	})

	t.Run("Rejects non-http schemes", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/proxy/drawing?url=file:///etc/passwd", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
		}
	})

	t.Run("Upstream error becomes bad gateway", func(t *testing.T) {
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/proxy/drawing?url=%s/expired", mockStore.URL), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusBadGateway {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadGateway)
		}
	})
}

func TestInferImageContentType(t *testing.T) {
	cases := map[string]string{
		"https://x/a.PNG":                 "image/png",
		"https://x/a.jpg?X-Expires=60":    "image/jpeg",
		"https://x/a.webp":                "image/webp",
		"https://x/a.svg":                 "image/svg+xml",
		"https://x/report.pdf?sig=abc123": "application/pdf",
		"https://x/unknown":               "application/octet-stream",
	}
	for url, want := range cases {
		if got := inferImageContentType(url); got != want {
			t.Errorf("inferImageContentType(%q) = %q, want %q", url, got, want)
		}
	}
}
