package articles

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const maxURLLength = 2000

// blacklistPatterns mark URLs that are never acceptable: placeholder
// domains left by broken scrapes and non-article schemes.
var blacklistPatterns = []string{
	"example.com", "example.org", "example.net",
	"domain.com", "test.com", "dummy.com", "sample.com",
	"localhost",
	"javascript:", "mailto:", "tel:", "ftp:", "file:", "data:", "blob:",
	"google.com/rss/articles/",
}

// trustedDomains are known health authorities and outlets; articles from
// these hosts skip the liveness check.
var trustedDomains = []string{
	"who.int", "nih.gov", "cdc.gov", "fda.gov",
	"webmd.com", "healthline.com", "mayoclinic.org",
	"medicalnewstoday.com", "health.com", "everydayhealth.com",
	"health.harvard.edu", "sciencedaily.com",
	"pubmed.ncbi.nlm.nih.gov", "nejm.org", "thelancet.com", "bmj.com",
	"nutritionfacts.org",
	"reuters.com", "bbc.com", "npr.org",
}

// Result classifies a candidate URL. Reason is set only on rejection.
type Result struct {
	Accepted bool
	Reason   string
}

func accepted() Result {
	return Result{Accepted: true}
}

func rejected(reason string) Result {
	return Result{Accepted: false, Reason: reason}
}

// URLValidator classifies candidate article URLs before they are
// persisted, and again (format rules only) when rows are read back, to
// filter legacy bad data. Rejection is non-fatal: a rejected article is
// simply excluded.
type URLValidator struct {
	httpClient    *http.Client
	checkLiveness bool
	userAgent     string
}

func NewURLValidator(httpClient *http.Client, checkLiveness bool, userAgent string) *URLValidator {
	return &URLValidator{
		httpClient:    httpClient,
		checkLiveness: checkLiveness,
		userAgent:     userAgent,
	}
}

// CheckFormat applies the network-free rules: well-formed http(s) URL
// with a host, not matching any blacklist pattern. Safe to call on the
// read path.
func (v *URLValidator) CheckFormat(rawURL string) Result {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return rejected("empty URL")
	}
	if len(rawURL) > maxURLLength {
		return rejected("URL too long")
	}

	lower := strings.ToLower(rawURL)
	for _, pattern := range blacklistPatterns {
		if strings.Contains(lower, pattern) {
			return rejected(fmt.Sprintf("URL matches blacklisted pattern %q", pattern))
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rejected("malformed URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return rejected(fmt.Sprintf("unsupported scheme %q", parsed.Scheme))
	}
	if parsed.Host == "" {
		return rejected("missing host")
	}

	return accepted()
}

// IsTrusted reports whether the URL's host belongs to the trusted-domain
// allowlist.
func (v *URLValidator) IsTrusted(rawURL string) bool {
	parsed, err := url.Parse(strings.ToLower(rawURL))
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	for _, trusted := range trustedDomains {
		if host == trusted || strings.HasSuffix(host, "."+trusted) {
			return true
		}
	}
	return false
}

// Validate applies all rules in order: format, blacklist, allowlist,
// then an optional liveness check. A failed or timed-out liveness check
// rejects without retry.
func (v *URLValidator) Validate(ctx context.Context, rawURL string) Result {
	if result := v.CheckFormat(rawURL); !result.Accepted {
		return result
	}

	if v.IsTrusted(rawURL) {
		return accepted()
	}

	if !v.checkLiveness || v.httpClient == nil {
		return accepted()
	}

	if err := v.checkAccessible(ctx, rawURL); err != nil {
		return rejected(fmt.Sprintf("liveness check failed: %v", err))
	}
	return accepted()
}

func (v *URLValidator) checkAccessible(ctx context.Context, rawURL string) error {
	resp, err := v.doRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return err
	}
	resp.Body.Close()

	// Some hosts reject HEAD outright; fall back to GET.
	if resp.StatusCode == http.StatusMethodNotAllowed {
		resp, err = v.doRequest(ctx, http.MethodGet, rawURL)
		if err != nil {
			return err
		}
		resp.Body.Close()
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (v *URLValidator) doRequest(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}
	return v.httpClient.Do(req)
}
