// Package tweet resolves tweet text from public endpoints when a webhook
// payload arrives without it.
package tweet

import (
	"context"
	"strings"
)

// Resolver returns the text of the tweet at url. Implementations degrade to
// an empty string when no text can be recovered; an error is advisory and
// must not fail the request.
type Resolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

// IDFromURL extracts the numeric status ID from a tweet URL, e.g.
// https://x.com/user/status/123 -> "123". Returns "" when no ID is present.
func IDFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimRight(raw, "/")
	marker := "/status/"
	i := strings.LastIndex(raw, marker)
	if i < 0 {
		return ""
	}
	id := raw[i+len(marker):]
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return id
}
