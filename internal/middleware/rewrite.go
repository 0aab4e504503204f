package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const apiPrefix = "/api"

// bareResources are the resource roots reachable without the /api prefix.
var bareResources = []string{"/orders", "/users"}

// RewritePath maps a bare resource path such as /users/getList to its /api
// equivalent. Paths outside bareResources are reported unchanged.
func RewritePath(path string) (string, bool) {
	for _, root := range bareResources {
		if path == root || strings.HasPrefix(path, root+"/") {
			return apiPrefix + path, true
		}
	}
	return path, false
}

// RewriteBarePaths returns an Echo middleware that rewrites bare resource
// paths before routing. Register it with Echo.Pre. The query string is left
// untouched.
func RewriteBarePaths() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := c.Request().URL
			if rewritten, ok := RewritePath(u.Path); ok {
				u.Path = rewritten
				if u.RawPath != "" {
					u.RawPath = apiPrefix + u.RawPath
				}
			}
			return next(c)
		}
	}
}
