package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	config "github.com/drummonds/pdfthumbs/config"
	database "github.com/drummonds/pdfthumbs/database"
)

type blankRenderer struct{}

func (blankRenderer) RenderFirstPage(data []byte, dpi float64) (image.Image, int, error) {
	return image.NewNRGBA(image.Rect(0, 0, 100, 100)), 1, nil
}

func (blankRenderer) Close() error { return nil }

func TestMain(m *testing.M) {
	injectGlobals(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func setupServer(t *testing.T, maxUploadMB int) *echo.Echo {
	t.Helper()
	db, err := database.NewRepository(fmt.Sprintf("file:main_%s?mode=memory&cache=shared", ulid.Make().String()))
	if err != nil {
		t.Fatalf("Failed to open job log: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	serverConfig := config.ServerConfig{
		WorkDir:     t.TempDir(),
		MaxUploadMB: maxUploadMB,
		Thumbnails:  config.DefaultThumbnailConfig(),
	}
	return newServer(serverConfig, db, blankRenderer{})
}

func TestIsAddressInUse(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{errors.New("listen tcp :8000: bind: address already in use"), true},
		{errors.New("permission denied"), false},
	}
	for _, tt := range tests {
		if got := isAddressInUse(tt.err); got != tt.expected {
			t.Errorf("isAddressInUse(%v) = %v, expected %v", tt.err, got, tt.expected)
		}
	}
}

func TestNextPort(t *testing.T) {
	if got := nextPort("8000"); got != "8001" {
		t.Errorf("Expected 8001, got %s", got)
	}
	if got := nextPort("http"); got != "http" {
		t.Errorf("Expected non-numeric port unchanged, got %s", got)
	}
}

func TestNotFound(t *testing.T) {
	e := setupServer(t, 16)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		t.Errorf("Expected JSON for API 404, got %s", rec.Header().Get(echo.HeaderContentType))
	}
	if !strings.Contains(rec.Body.String(), "/api/nope") {
		t.Errorf("Expected path in API 404 body, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Page Not Found") {
		t.Errorf("Expected HTML 404 page, got %s", rec.Body.String())
	}
}

func TestServerRoutes(t *testing.T) {
	e := setupServer(t, 16)

	tests := []struct {
		path        string
		contentType string
	}{
		{"/api/health", echo.MIMEApplicationJSON},
		{"/api/about", echo.MIMEApplicationJSON},
		{"/api/jobs", echo.MIMEApplicationJSON},
		{"/webapp/webapp.css", "text/css"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", tt.path, rec.Code)
			continue
		}
		if !strings.Contains(rec.Header().Get(echo.HeaderContentType), tt.contentType) {
			t.Errorf("GET %s: expected %s, got %s", tt.path, tt.contentType, rec.Header().Get(echo.HeaderContentType))
		}
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code == http.StatusNotFound {
		t.Error("Web app is not mounted at /")
	}
}

func TestBodyLimit(t *testing.T) {
	e := setupServer(t, 1)

	body := bytes.Repeat([]byte("x"), 2<<20)
	req := httptest.NewRequest(http.MethodPost, "/api/thumbnails", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "multipart/form-data; boundary=xyz")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413 for oversized upload, got %d", rec.Code)
	}
}

// findChrome returns a Chrome or Chromium binary; chromedp cannot drive Firefox
func findChrome() (string, error) {
	for _, browser := range []string{"chromium", "chromium-browser", "google-chrome", "chrome"} {
		if path, err := exec.LookPath(browser); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no suitable browser found")
}

// TestFrontendRendering loads the upload page in a headless browser
func TestFrontendRendering(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	browserPath, err := findChrome()
	if err != nil {
		t.Skip("No Chrome or Chromium found, skipping browser test")
	}

	ts := httptest.NewServer(setupServer(t, 16))
	defer ts.Close()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(browserPath),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pageTitle, bodyHTML string
	err = chromedp.Run(ctx,
		chromedp.Navigate(ts.URL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Title(&pageTitle),
		chromedp.InnerHTML("body", &bodyHTML),
	)
	if err != nil {
		t.Fatalf("Failed to load page: %v", err)
	}

	if pageTitle == "" {
		t.Error("Page title is empty")
	}
	if len(bodyHTML) < 100 {
		t.Errorf("Body HTML seems too short (%d chars), page may not have rendered properly", len(bodyHTML))
	}
}
