package scorer

import (
	"net/url"
	"strings"

	"github.com/mapline/prospect-cli/internal/config"
)

// Rejection reason codes produced by Validator.Check.
const (
	CandidateAccepted       = "accepted"
	CandidateRejectedEmpty  = "rejected: empty or not http(s)"
	CandidateRejectedParse  = "rejected: unparsable url"
	CandidateRejectedDomain = "rejected: blocked infrastructure domain"
	CandidateRejectedAsset  = "rejected: static asset file"
)

// Validator decides whether a website URL counts as a real business site.
// Map sources leak their own infrastructure links (redirects, font CDNs,
// stylesheet assets) into listing data; those must never count as a website.
type Validator struct {
	blocked []string
	exts    []string
}

// NewValidator builds a Validator from the configured blocked-domain and
// asset-extension lists.
func NewValidator(cfg config.ScorerConfig) *Validator {
	return &Validator{
		blocked: cfg.BlockedDomains,
		exts:    cfg.AssetExtensions,
	}
}

// Valid reports whether raw is a usable business website.
func (v *Validator) Valid(raw string) bool {
	return v.Check(raw) == CandidateAccepted
}

// Check validates raw and returns an acceptance or rejection reason code.
func (v *Validator) Check(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(strings.ToLower(raw), "http") {
		return CandidateRejectedEmpty
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return CandidateRejectedParse
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	for _, b := range v.blocked {
		b = strings.ToLower(b)
		if host == b || strings.HasSuffix(host, "."+b) {
			return CandidateRejectedDomain
		}
	}

	path := strings.ToLower(u.Path)
	for _, ext := range v.exts {
		if strings.HasSuffix(path, ext) {
			return CandidateRejectedAsset
		}
	}

	return CandidateAccepted
}

// UnwrapRedirect extracts the destination URL from a Google redirect link
// like "https://www.google.com/url?q=http://example.com". Non-redirect URLs
// pass through unchanged.
func UnwrapRedirect(raw string) string {
	if raw == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	host := strings.ToLower(u.Hostname())
	if !strings.HasSuffix(host, "google.com") || !strings.HasPrefix(u.Path, "/url") {
		return raw
	}

	if q := u.Query().Get("q"); q != "" {
		if dest, err := url.QueryUnescape(q); err == nil {
			return dest
		}
		return q
	}
	return raw
}
