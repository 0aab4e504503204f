package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRewritePath(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/orders", "/api/orders", true},
		{"/orders/42", "/api/orders/42", true},
		{"/users", "/api/users", true},
		{"/users/getList", "/api/users/getList", true},
		{"/users/7", "/api/users/7", true},
		{"/api/orders", "/api/orders", false},
		{"/ordersX", "/ordersX", false},
		{"/status", "/status", false},
		{"/", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := RewritePath(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("RewritePath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRewriteBarePaths(t *testing.T) {
	e := echo.New()
	e.Pre(RewriteBarePaths())

	var gotPath, gotQuery, gotID string
	e.GET("/api/orders/:id", func(c echo.Context) error {
		gotPath = c.Request().URL.Path
		gotQuery = c.Request().URL.RawQuery
		gotID = c.Param("id")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/42?expand=items&expand=user", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotPath != "/api/orders/42" {
		t.Errorf("path = %q, want %q", gotPath, "/api/orders/42")
	}
	if gotQuery != "expand=items&expand=user" {
		t.Errorf("query = %q, want %q", gotQuery, "expand=items&expand=user")
	}
	if gotID != "42" {
		t.Errorf("id = %q, want %q", gotID, "42")
	}
}

func TestRewriteBarePaths_EscapedPath(t *testing.T) {
	e := echo.New()
	e.Pre(RewriteBarePaths())

	var gotRaw string
	e.GET("/api/users/:id", func(c echo.Context) error {
		gotRaw = c.Request().URL.EscapedPath()
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/a%2Fb", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotRaw != "/api/users/a%2Fb" {
		t.Errorf("escaped path = %q, want %q", gotRaw, "/api/users/a%2Fb")
	}
}
