package validation

import (
	"strings"
	"testing"
)

func TestValidateURL_ValidURLs(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		requireHTTPS bool
	}{
		{"HTTP URL", "http://example.com", false},
		{"HTTPS URL", "https://www.immigration.go.th/?p=34106", false},
		{"HTTPS URL with requireHTTPS", "https://tdac.immigration.go.th", true},
		{"URL with path", "https://bangkok.immigration.go.th/en/downloads_en/", false},
		{"URL with port", "https://example.com:8080/path", false},
		{"Empty URL (allowed)", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateURL(tt.url, "test_field", tt.requireHTTPS); err != nil {
				t.Errorf("ValidateURL(%q, requireHTTPS=%v) returned error: %v", tt.url, tt.requireHTTPS, err)
			}
		})
	}
}

func TestValidateURL_InvalidURLs(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		requireHTTPS  bool
		expectedError string
	}{
		{"No scheme", "example.com", false, "must include a scheme"},
		{"HTTP when HTTPS required", "http://example.com", true, "must use HTTPS"},
		{"Invalid scheme", "ftp://example.com", false, "scheme must be http or https"},
		{"No host", "https://", false, "must include a host"},
		{"Malformed URL", "ht!tp://example.com", false, "invalid URL format"},
		{"Script URL", "javascript:alert(1)", false, "must include a host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, "test_field", tt.requireHTTPS)
			if err == nil {
				t.Fatalf("ValidateURL(%q) expected error, got nil", tt.url)
			}
			if !strings.Contains(err.Error(), tt.expectedError) {
				t.Errorf("expected error containing %q, got %q", tt.expectedError, err.Error())
			}
		})
	}
}

func TestValidateLink(t *testing.T) {
	tests := []struct {
		link    string
		wantErr bool
	}{
		{"/visa/marriage/stages", false},
		{"/", false},
		{"https://tdac.immigration.go.th", false},
		{"//evil.example", true},
		{"/\\evil.example", true},
		{"visa/marriage", true},
		{"mailto:someone@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			err := ValidateLink(tt.link, "back_link")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLink(%q) error = %v, wantErr %v", tt.link, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		requireHTTPS  bool
		expectedError string
	}{
		{"origin", "https://www.thaivisachecklist.com", true, ""},
		{"origin with slash", "https://www.thaivisachecklist.com/", true, ""},
		{"local http", "http://localhost:8080", false, ""},
		{"empty", "", false, "is required"},
		{"http in production", "http://www.thaivisachecklist.com", true, "must use HTTPS"},
		{"with path", "https://example.com/site", false, "must not contain a path"},
		{"with query", "https://example.com?x=1", false, "must not contain query"},
		{"with fragment", "https://example.com#top", false, "must not contain a fragment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url, "SITE_URL", tt.requireHTTPS)
			if tt.expectedError == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.expectedError) {
				t.Errorf("expected error containing %q, got %v", tt.expectedError, err)
			}
		})
	}
}
