// Package slug derives URL slugs from display names.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// maxAttempts bounds the -1, -2, ... suffix search.
const maxAttempts = 1000

// Make lowercases name, replaces every run of non-alphanumeric characters
// with a single hyphen and trims leading and trailing hyphens.
func Make(name string) string {
	s := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Unique returns Make(name), suffixed with -1, -2, ... until exists reports
// it free.
func Unique(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	base := Make(name)
	if base == "" {
		return "", fmt.Errorf("name %q produces an empty slug", name)
	}

	candidate := base
	for i := 1; i <= maxAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	return "", fmt.Errorf("no free slug for %q after %d attempts", name, maxAttempts)
}
