// Package env resolves the deployment mode and the upstream base URLs from
// environment-style key/value sources.
//
// Nothing is cached: every call takes a fresh Snapshot of the source, so the
// status endpoint and the proxy always agree on the backend they report and use.
package env

import (
	"net/url"
	"strings"
)

// Mode is the deployment mode that selects which upstream is used.
type Mode string

const (
	Dev  Mode = "dev"
	Prod Mode = "prod"
)

// Variable names read by the resolver.
const (
	KeyAppEnv       = "APP_ENV"
	KeyPublicAppEnv = "NEXT_PUBLIC_APP_ENV"
	KeyRuntimeEnv   = "NODE_ENV"

	KeyServerBaseURL     = "API_BASE_URL"
	KeyServerBaseURLDev  = "API_BASE_URL_DEV"
	KeyServerBaseURLProd = "API_BASE_URL_PROD"

	KeyPublicBaseURL     = "NEXT_PUBLIC_API_BASE_URL"
	KeyPublicBaseURLDev  = "NEXT_PUBLIC_API_BASE_URL_DEV"
	KeyPublicBaseURLProd = "NEXT_PUBLIC_API_BASE_URL_PROD"
)

// Keys lists every variable the resolver reads.
var Keys = []string{
	KeyAppEnv, KeyPublicAppEnv, KeyRuntimeEnv,
	KeyServerBaseURL, KeyServerBaseURLDev, KeyServerBaseURLProd,
	KeyPublicBaseURL, KeyPublicBaseURLDev, KeyPublicBaseURLProd,
}

type urlKeys struct {
	label    string
	override string
	dev      string
	prod     string
}

var (
	serverURLKeys = urlKeys{"API base URL", KeyServerBaseURL, KeyServerBaseURLDev, KeyServerBaseURLProd}
	publicURLKeys = urlKeys{"public API base URL", KeyPublicBaseURL, KeyPublicBaseURLDev, KeyPublicBaseURLProd}
)

// ParseMode maps "dev", "development", "prod" and "production" (trimmed,
// case-insensitive) to a Mode. Any other value reports false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return Dev, true
	case "prod", "production":
		return Prod, true
	}
	return "", false
}

// Snapshot is a point-in-time copy of the resolver variables.
type Snapshot struct {
	values map[string]string
}

// Take reads every resolver variable from src once.
func Take(src Source) Snapshot {
	values := make(map[string]string, len(Keys))
	if src != nil {
		for _, k := range Keys {
			if v, ok := src.Lookup(k); ok {
				values[k] = v
			}
		}
	}
	return Snapshot{values: values}
}

// Get returns the raw value of key and whether it was set.
func (s Snapshot) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Mode returns the deployment mode. APP_ENV wins over NEXT_PUBLIC_APP_ENV;
// unrecognized values fall through. Without either, NODE_ENV=production
// selects Prod and anything else selects Dev.
func (s Snapshot) Mode() Mode {
	if m, ok := ParseMode(s.values[KeyAppEnv]); ok {
		return m
	}
	if m, ok := ParseMode(s.values[KeyPublicAppEnv]); ok {
		return m
	}
	if s.values[KeyRuntimeEnv] == "production" {
		return Prod
	}
	return Dev
}

// ServerBaseURL returns the normalized upstream base URL used by the proxy.
func (s Snapshot) ServerBaseURL() (string, error) {
	return s.baseURL(serverURLKeys)
}

// PublicBaseURL returns the normalized base URL advertised to clients.
func (s Snapshot) PublicBaseURL() (string, error) {
	return s.baseURL(publicURLKeys)
}

func (s Snapshot) baseURL(k urlKeys) (string, error) {
	if explicit := s.values[k.override]; explicit != "" {
		return NormalizeBaseURL(explicit)
	}

	dev, prod := s.values[k.dev], s.values[k.prod]
	if dev == "" || prod == "" {
		return "", &ConfigurationError{
			Keys:    []string{k.override, k.dev, k.prod},
			Message: "missing " + k.label + " env vars: set " + k.override + " or (" + k.dev + " and " + k.prod + ")",
		}
	}

	if s.Mode() == Prod {
		return NormalizeBaseURL(prod)
	}
	return NormalizeBaseURL(dev)
}

// NormalizeBaseURL trims whitespace and trailing slashes and requires the
// result to be an absolute URL with a host.
func NormalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")

	u, err := url.Parse(trimmed)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", &ConfigurationError{
			Value:   raw,
			Message: "invalid API base URL",
			Cause:   err,
		}
	}
	return trimmed, nil
}

// Resolver answers mode and base URL questions against a Source.
// It holds no state besides the source and is safe for concurrent use.
type Resolver struct {
	src Source
}

// NewResolver creates a Resolver reading from src.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// Snapshot reads the current variable values.
func (r *Resolver) Snapshot() Snapshot {
	return Take(r.src)
}

// Mode resolves the deployment mode. It never fails.
func (r *Resolver) Mode() Mode {
	return r.Snapshot().Mode()
}

// ServerBaseURL resolves the upstream base URL for proxied calls.
func (r *Resolver) ServerBaseURL() (string, error) {
	return r.Snapshot().ServerBaseURL()
}

// PublicBaseURL resolves the client-visible base URL.
func (r *Resolver) PublicBaseURL() (string, error) {
	return r.Snapshot().PublicBaseURL()
}

// RuntimeMode returns the raw ambient runtime mode and whether it is set.
func (r *Resolver) RuntimeMode() (string, bool) {
	return r.Snapshot().Get(KeyRuntimeEnv)
}
