package articles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestURLValidator_CheckFormat(t *testing.T) {
	validator := NewURLValidator(nil, false, "")

	tests := []struct {
		name     string
		url      string
		accepted bool
	}{
		{"valid https", "https://healthsite.org/articles/vitamin-d", true},
		{"valid http", "http://healthsite.org/news", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"example domain", "https://example.com/article", false},
		{"localhost", "http://localhost:8080/a", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"mailto scheme", "mailto:news@healthsite.org", false},
		{"google news redirect", "https://news.google.com/rss/articles/CBMiabc", false},
		{"ftp scheme", "ftp://healthsite.org/file", false},
		{"missing scheme", "healthsite.org/article", false},
		{"missing host", "https:///path-only", false},
		{"too long", "https://healthsite.org/" + strings.Repeat("a", 2100), false},
	}

	for _, tt := range tests {
		result := validator.CheckFormat(tt.url)
		if result.Accepted != tt.accepted {
			t.Errorf("%s: CheckFormat(%q).Accepted = %v, expected %v (reason: %s)",
				tt.name, tt.url, result.Accepted, tt.accepted, result.Reason)
		}
		if !tt.accepted && result.Reason == "" {
			t.Errorf("%s: rejection should carry a reason", tt.name)
		}
	}
}

func TestURLValidator_IsTrusted(t *testing.T) {
	validator := NewURLValidator(nil, false, "")

	tests := []struct {
		url     string
		trusted bool
	}{
		{"https://www.who.int/news/item/some-article", true},
		{"https://nih.gov/research", true},
		{"https://pubmed.ncbi.nlm.nih.gov/12345", true},
		{"https://blog.cdc.gov/update", true},
		{"https://unknownhealthblog.net/post", false},
		{"https://cdc.gov.evil.com/phish", false},
	}

	for _, tt := range tests {
		if result := validator.IsTrusted(tt.url); result != tt.trusted {
			t.Errorf("IsTrusted(%q) = %v, expected %v", tt.url, result, tt.trusted)
		}
	}
}

func TestURLValidator_Validate_TrustedSkipsLiveness(t *testing.T) {
	// No server behind the client; a liveness attempt would fail.
	client := &http.Client{Timeout: 50 * time.Millisecond}
	validator := NewURLValidator(client, true, "test-agent")

	result := validator.Validate(context.Background(), "https://www.who.int/news/item/article")
	if !result.Accepted {
		t.Errorf("Trusted domain should skip liveness check, rejected with: %s", result.Reason)
	}
}

func TestURLValidator_Validate_LivenessCheck(t *testing.T) {
	var sawHead bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			sawHead = true
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	validator := NewURLValidator(server.Client(), true, "test-agent")

	result := validator.Validate(context.Background(), server.URL+"/article")
	if !result.Accepted {
		t.Errorf("Live URL should be accepted, rejected with: %s", result.Reason)
	}
	if !sawHead {
		t.Error("Liveness check should use HEAD first")
	}
}

func TestURLValidator_Validate_HeadFallsBackToGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	validator := NewURLValidator(server.Client(), true, "test-agent")

	result := validator.Validate(context.Background(), server.URL+"/article")
	if !result.Accepted {
		t.Errorf("405 on HEAD should fall back to GET, rejected with: %s", result.Reason)
	}
}

func TestURLValidator_Validate_DeadURLRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	validator := NewURLValidator(server.Client(), true, "test-agent")

	result := validator.Validate(context.Background(), server.URL+"/gone")
	if result.Accepted {
		t.Error("URL returning 404 should be rejected")
	}
}

func TestURLValidator_Validate_LivenessDisabled(t *testing.T) {
	validator := NewURLValidator(nil, false, "")

	result := validator.Validate(context.Background(), "https://unknownhealthblog.net/post")
	if !result.Accepted {
		t.Errorf("With liveness disabled, well-formed URL should pass, rejected with: %s", result.Reason)
	}
}
