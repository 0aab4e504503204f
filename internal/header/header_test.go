package header

import (
	"net/http"
	"reflect"
	"testing"
)

func TestSanitize(t *testing.T) {
	src := http.Header{
		"Connection":          {"keep-alive"},
		"keep-alive":          {"timeout=5"},
		"Proxy-Authenticate":  {"Basic"},
		"PROXY-AUTHORIZATION": {"Basic abc"},
		"Te":                  {"trailers"},
		"Trailer":             {"Expires"},
		"Transfer-Encoding":   {"chunked"},
		"Upgrade":             {"websocket"},
		"Host":                {"example.com"},
		"content-length":      {"42"},
		"Content-Type":        {"application/json"},
		"x-Custom-Case":       {"a", "b"},
		"Authorization":       {"Bearer token"},
		"Set-Cookie":          {"a=1", "b=2"},
	}

	got := Sanitize(src)

	want := http.Header{
		"Content-Type":  {"application/json"},
		"x-Custom-Case": {"a", "b"},
		"Authorization": {"Bearer token"},
		"Set-Cookie":    {"a=1", "b=2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize() = %v, want %v", got, want)
	}

	if len(src) != 14 {
		t.Errorf("Sanitize() modified its input: %d keys left", len(src))
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	src := http.Header{
		"Transfer-Encoding": {"chunked"},
		"Accept":            {"*/*"},
		"X-Request-Id":      {"abc"},
	}

	once := Sanitize(src)
	twice := Sanitize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Sanitize(Sanitize(h)) = %v, want %v", twice, once)
	}
}

func TestSanitize_CopiesValues(t *testing.T) {
	src := http.Header{"Accept": {"text/html"}}
	got := Sanitize(src)
	got["Accept"][0] = "changed"

	if src.Get("Accept") != "text/html" {
		t.Errorf("source header mutated through copy: %q", src.Get("Accept"))
	}
}

func TestSanitize_Empty(t *testing.T) {
	if got := Sanitize(nil); got == nil || len(got) != 0 {
		t.Errorf("Sanitize(nil) = %#v, want empty non-nil header", got)
	}
}

func TestIsHopByHop(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"connection", true},
		{"CONNECTION", true},
		{"Keep-Alive", true},
		{"TE", true},
		{"Host", true},
		{"Content-Length", true},
		{"Content-Type", false},
		{"X-Forwarded-For", false},
		{"Proxy-Connection", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHopByHop(tt.name); got != tt.want {
				t.Errorf("IsHopByHop(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
