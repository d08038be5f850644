package api

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// handleProxyDrawing proxies the original-drawing image referenced by a
// job's details. Object-store URLs are time-limited and often refuse
// cross-origin embedding, so the UI loads them through this endpoint.
//
// Query parameters:
//   - url: (required) The drawing URL to proxy
func (s *Server) handleProxyDrawing(w http.ResponseWriter, r *http.Request) {
	resourceURL := r.URL.Query().Get("url")
	if resourceURL == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing 'url' parameter")
		return
	}

	parsedURL, err := url.Parse(resourceURL)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid URL")
		return
	}

	// Security: Only allow http/https URLs
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		RespondWithError(w, http.StatusBadRequest, "Only http and https URLs are allowed")
		return
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(r.Context(), "GET", resourceURL, nil)
	if err != nil {
		s.app.Log.Error("failed to create drawing proxy request", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to create request")
		return
	}

	resp, err := client.Do(req)
	if err != nil {
		s.app.Log.Warn("failed to fetch proxied drawing", "url", resourceURL, "error", err)
		RespondWithError(w, http.StatusBadGateway, "Failed to fetch drawing")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.app.Log.Warn("proxied drawing returned error", "status", resp.StatusCode, "url", resourceURL)
		RespondWithError(w, http.StatusBadGateway, "Drawing server returned error")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	// Trim any charset or other parameters
	if strings.Contains(contentType, ";") {
		contentType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	if contentType == "" {
		contentType = inferImageContentType(resourceURL)
	}

	w.Header().Set("Content-Type", contentType)
	// The source URL expires, so cached copies must be short-lived.
	w.Header().Set("Cache-Control", "private, max-age=300")

	if _, err := io.Copy(w, resp.Body); err != nil {
		// Response already started, can't send error
		s.app.Log.Warn("error copying proxied drawing data", "error", err)
	}
}

// inferImageContentType guesses a content type from the URL extension,
// ignoring any query string a pre-signed URL carries.
func inferImageContentType(rawURL string) string {
	lowerURL := strings.ToLower(rawURL)
	if i := strings.IndexByte(lowerURL, '?'); i >= 0 {
		lowerURL = lowerURL[:i]
	}
	switch {
	case strings.HasSuffix(lowerURL, ".jpg") || strings.HasSuffix(lowerURL, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lowerURL, ".png"):
		return "image/png"
	case strings.HasSuffix(lowerURL, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lowerURL, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lowerURL, ".svg"):
		return "image/svg+xml"
	case strings.HasSuffix(lowerURL, ".pdf"):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
