// Package header strips hop-by-hop and transport-specific headers at the
// proxy boundary.
package header

import (
	"net/http"
	"strings"
)

// hopByHop is keyed by lower-cased header name.
var hopByHop = map[string]struct{}{
	"connection":          {},
	"keep-alive":          {},
	"proxy-authenticate":  {},
	"proxy-authorization": {},
	"te":                  {},
	"trailer":             {},
	"transfer-encoding":   {},
	"upgrade":             {},
	"host":                {},
	"content-length":      {},
}

// IsHopByHop reports whether name is on the denylist, ignoring case.
func IsHopByHop(name string) bool {
	_, ok := hopByHop[strings.ToLower(name)]
	return ok
}

// Sanitize returns a copy of src without denylisted headers. The same policy
// applies to inbound request headers and upstream response headers. Other
// keys keep their original spelling and every value.
func Sanitize(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for key, vals := range src {
		if IsHopByHop(key) {
			continue
		}
		dst[key] = append([]string(nil), vals...)
	}
	return dst
}
