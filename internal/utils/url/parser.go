// Package urlutil normalizes and validates the URL strings taiko's goto/
// openTab verbs accept (spec.md §4.2 "normalize URL", §8 "Round-trip").
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize prepends "http://" to raw when it carries no scheme and isn't a
// file: URL (spec.md §4.2). It is a fixed point: Normalize(Normalize(u)) ==
// Normalize(u) for every u, since a string that already has a scheme is
// returned unchanged (spec.md §8 "Round-trip").
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "file:") {
		return trimmed
	}
	if u, err := url.Parse(trimmed); err == nil && u.Scheme != "" {
		return trimmed
	}
	return "http://" + trimmed
}

// ValidateURL performs comprehensive URL validation for normalized URLs.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" && parsed.Scheme != "file" {
		return fmt.Errorf("invalid URL scheme: must be http, https or file, got %s", parsed.Scheme)
	}

	if parsed.Scheme != "file" && parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}
