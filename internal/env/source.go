package env

import "os"

// Source supplies raw configuration values by key.
type Source interface {
	Lookup(key string) (string, bool)
}

type osSource struct{}

// OS returns a Source backed by the process environment.
func OS() Source { return osSource{} }

func (osSource) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Map is a Source backed by a fixed set of values.
type Map map[string]string

// Lookup implements Source.
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

type chain []Source

// Chain returns a Source that consults each source in order and returns the
// first value that is set and non-empty. Whitespace-only values count as set
// so that a malformed override is reported rather than skipped.
func Chain(sources ...Source) Source {
	return chain(sources)
}

func (c chain) Lookup(key string) (string, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
