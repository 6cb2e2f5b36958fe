// Package validation checks the URLs that appear in configuration and in
// the embedded content before the server starts.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// URLValidationError represents a URL validation failure
type URLValidationError struct {
	Field   string
	Message string
	URL     string
}

func (e URLValidationError) Error() string {
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// ValidateURL checks that raw is an absolute http or https URL. Empty values
// pass; callers decide whether a field is required.
func ValidateURL(raw, field string, requireHTTPS bool) error {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return URLValidationError{Field: field, Message: "invalid URL format", URL: raw}
	}
	if u.Scheme == "" {
		return URLValidationError{Field: field, Message: "URL must include a scheme (http:// or https://)", URL: raw}
	}
	if u.Host == "" {
		return URLValidationError{Field: field, Message: "URL must include a host", URL: raw}
	}

	scheme := strings.ToLower(u.Scheme)
	if requireHTTPS && scheme != "https" {
		return URLValidationError{Field: field, Message: "URL must use HTTPS in production", URL: raw}
	}
	if scheme != "http" && scheme != "https" {
		return URLValidationError{Field: field, Message: "URL scheme must be http or https", URL: raw}
	}
	return nil
}

// ValidateLink accepts either a path on this site or an absolute http(s) URL.
func ValidateLink(raw, field string) error {
	if strings.HasPrefix(raw, "/") {
		if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
			return URLValidationError{Field: field, Message: "protocol-relative links are not allowed", URL: raw}
		}
		return nil
	}
	return ValidateURL(raw, field, false)
}

// ValidateBaseURL checks the public origin used for canonical links and the
// sitemap. It must not carry a path, query or fragment.
func ValidateBaseURL(raw, field string, requireHTTPS bool) error {
	if raw == "" {
		return URLValidationError{Field: field, Message: "base URL is required", URL: raw}
	}
	if err := ValidateURL(raw, field, requireHTTPS); err != nil {
		return err
	}

	u, _ := url.Parse(raw)
	switch {
	case u.Path != "" && u.Path != "/":
		return URLValidationError{Field: field, Message: "base URL must not contain a path", URL: raw}
	case u.RawQuery != "":
		return URLValidationError{Field: field, Message: "base URL must not contain query parameters", URL: raw}
	case u.Fragment != "":
		return URLValidationError{Field: field, Message: "base URL must not contain a fragment", URL: raw}
	}
	return nil
}
