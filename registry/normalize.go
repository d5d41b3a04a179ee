package registry

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"qrlink/models"
)

const maxURLLength = 2048

var (
	schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
	// host:port without a scheme, e.g. "localhost:3000/x" or "example.com:8443".
	// The host must be localhost or contain a dot so "tel:911" keeps its scheme.
	hostPort = regexp.MustCompile(`^(?i:localhost|[a-z0-9-]+(\.[a-z0-9-]+)+):\d+(/|\?|#|$)`)
)

// NormalizeURL rewrites user input into an absolute URL with an explicit scheme.
// It is idempotent: normalizing its own output returns the same string.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	if strings.HasPrefix(s, "//") {
		return "https:" + s
	}
	if !schemePrefix.MatchString(s) || hostPort.MatchString(s) {
		return "https://" + s
	}
	return s
}

// ValidateDestination normalizes raw and checks that the result is an absolute URL.
func ValidateDestination(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", models.Validationf("Destination URL is required")
	}

	normalized := NormalizeURL(raw)
	if len(normalized) > maxURLLength {
		return "", fmt.Errorf("%w: longer than %d characters", models.ErrInvalidURL, maxURLLength)
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidURL, err)
	}
	if !u.IsAbs() || (u.Host == "" && u.Opaque == "") {
		return "", fmt.Errorf("%w: %q is not an absolute URL", models.ErrInvalidURL, normalized)
	}
	return normalized, nil
}
