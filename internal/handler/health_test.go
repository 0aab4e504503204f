package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"backend-proxy-go/internal/env"
)

func TestHealthz(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler(env.NewResolver(env.Map{}), "test")
	if err := h.Healthz(c); err != nil {
		t.Fatalf("Healthz() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestStatus(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/status", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler(env.NewResolver(env.Map{
		env.KeyAppEnv:            "production",
		env.KeyRuntimeEnv:        "production",
		env.KeyServerBaseURLDev:  "http://localhost:4000",
		env.KeyServerBaseURLProd: "https://api.example.com/",
		env.KeyPublicBaseURLProd: "https://public.example.com",
		env.KeyPublicBaseURLDev:  "http://localhost:4001",
	}), "1.2.3")
	h.now = func() time.Time {
		return time.Date(2024, 3, 9, 12, 30, 5, 42_000_000, time.FixedZone("CET", 3600))
	}

	if err := h.Status(c); err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want %q", got, "no-store")
	}

	var body StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.AppEnv != env.Prod {
		t.Errorf("appEnv = %q, want %q", body.AppEnv, env.Prod)
	}
	if body.APIBaseURL != "https://api.example.com" {
		t.Errorf("apiBaseUrl = %q, want %q", body.APIBaseURL, "https://api.example.com")
	}
	if body.PublicAPIBaseURL != "https://public.example.com" {
		t.Errorf("publicApiBaseUrl = %q, want %q", body.PublicAPIBaseURL, "https://public.example.com")
	}
	if body.NodeEnv == nil || *body.NodeEnv != "production" {
		t.Errorf("nodeEnv = %v, want %q", body.NodeEnv, "production")
	}
	if body.Timestamp != "2024-03-09T11:30:05.042Z" {
		t.Errorf("timestamp = %q, want %q", body.Timestamp, "2024-03-09T11:30:05.042Z")
	}
	if body.Version != "1.2.3" {
		t.Errorf("version = %q, want %q", body.Version, "1.2.3")
	}
}

func TestStatus_DefaultsToDevWithNullNodeEnv(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/meta", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler(env.NewResolver(env.Map{
		env.KeyServerBaseURLDev:  "http://localhost:4000",
		env.KeyServerBaseURLProd: "https://api.example.com",
	}), "test")
	if err := h.Status(c); err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["appEnv"] != "dev" {
		t.Errorf("appEnv = %v, want %q", body["appEnv"], "dev")
	}
	if body["apiBaseUrl"] != "http://localhost:4000" {
		t.Errorf("apiBaseUrl = %v, want %q", body["apiBaseUrl"], "http://localhost:4000")
	}
	v, ok := body["nodeEnv"]
	if !ok || v != nil {
		t.Errorf("nodeEnv = %v (present %v), want null", v, ok)
	}
	if _, ok := body["publicApiBaseUrl"]; ok {
		t.Error("publicApiBaseUrl should be omitted when unresolved")
	}
}

func TestStatus_ConfigurationError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/status", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler(env.NewResolver(env.Map{
		env.KeyServerBaseURLDev: "http://localhost:4000",
	}), "test")
	if err := h.Status(c); err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error != kindConfiguration {
		t.Errorf("error = %q, want %q", body.Error, kindConfiguration)
	}
	if body.Message == "" {
		t.Error("message should describe the missing variables")
	}
}
