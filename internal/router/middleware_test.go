package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bazar-next/internal/config"

	"github.com/gin-gonic/gin"
)

func TestBuildCORSConfig(t *testing.T) {
	cfg := buildCORSConfig(config.CORSConfig{AllowedOrigins: []string{"*"}})
	if !cfg.AllowAllOrigins || cfg.AllowOriginFunc != nil {
		t.Fatalf("wildcard without credentials should allow all origins: %+v", cfg)
	}

	cfg = buildCORSConfig(config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})
	if cfg.AllowAllOrigins || cfg.AllowOriginFunc == nil || !cfg.AllowOriginFunc("https://example.com") {
		t.Fatalf("wildcard with credentials should echo origin")
	}

	cfg = buildCORSConfig(config.CORSConfig{AllowedOrigins: []string{" https://a.example.com ", ""}, MaxAge: 600})
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "https://a.example.com" {
		t.Fatalf("allow-list should be trimmed, got %v", cfg.AllowOrigins)
	}
	if cfg.MaxAge != 10*time.Minute {
		t.Fatalf("unexpected max age: %s", cfg.MaxAge)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://shop.example.com"}}))
	r.POST("/api/v1/carts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/carts", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("unexpected allow origin: %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}
