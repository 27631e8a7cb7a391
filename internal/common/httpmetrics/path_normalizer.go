package httpmetrics

import "strings"

const unmatchedPath = "{other}"

var knownPaths = map[string]struct{}{
	"/":                              {},
	"/signin":                        {},
	"/health":                        {},
	"/metrics":                       {},
	"/ws/feed":                       {},
	"/api/health/db":                 {},
	"/api/posts":                     {},
	"/api/profile":                   {},
	"/api/auth/signup":               {},
	"/api/auth/signin":               {},
	"/api/auth/signout":              {},
	"/api/auth/session":              {},
	"/api/auth/providers":            {},
	"/api/auth/callback/credentials": {},
}

var templatedPrefixes = []struct {
	prefix   string
	template string
}{
	{"/media/", "/media/{key}"},
	{"/api/auth/oauth/", "/api/auth/oauth/{provider}"},
	{"/api/auth/callback/", "/api/auth/callback/{provider}"},
}

// NormalizePath maps a request path to its route template. Paths outside
// the route table collapse into one label so scanners cannot grow the
// metric cardinality.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if _, ok := knownPaths[path]; ok {
		return path
	}
	for _, t := range templatedPrefixes {
		if rest, ok := strings.CutPrefix(path, t.prefix); ok && rest != "" {
			return t.template
		}
	}
	return unmatchedPath
}
