package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestValidator() *Validator {
	return NewValidator(DefaultScorerConfig())
}

func TestValidatorCheck(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"real site", "https://example.com", CandidateAccepted},
		{"real site with path", "https://example.com/contact", CandidateAccepted},
		{"http scheme", "http://example.com", CandidateAccepted},
		{"empty", "", CandidateRejectedEmpty},
		{"whitespace", "   ", CandidateRejectedEmpty},
		{"no scheme", "example.com", CandidateRejectedEmpty},
		{"no host", "http://", CandidateRejectedParse},
		{"malformed host", "http://[bad", CandidateRejectedParse},
		{"google host", "https://google.com/maps/place/x", CandidateRejectedDomain},
		{"gstatic asset host", "https://fonts.gstatic.com/s/font", CandidateRejectedDomain},
		{"gstatic subdomain", "https://maps.gstatic.com/mapfiles/x.png", CandidateRejectedDomain},
		{"doubleclick", "https://ad.doubleclick.net/track", CandidateRejectedDomain},
		{"www prefix stripped", "https://www.googleusercontent.com/photo", CandidateRejectedDomain},
		{"uppercase host", "https://WWW.GOOGLE.COM/x", CandidateRejectedDomain},
		{"not a suffix match mid-word", "https://notgoogle.com", CandidateAccepted},
		{"css asset", "https://example.com/app.css", CandidateRejectedAsset},
		{"js asset", "https://example.com/bundle.min.js", CandidateRejectedAsset},
		{"woff2 asset", "https://example.com/font.woff2", CandidateRejectedAsset},
		{"svg asset uppercase", "https://example.com/logo.SVG", CandidateRejectedAsset},
		{"css in query only", "https://example.com/page?asset=app.css", CandidateAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Check(tt.raw))
		})
	}
}

func TestValidatorValid(t *testing.T) {
	v := newTestValidator()

	assert.True(t, v.Valid("https://example.com"))
	assert.False(t, v.Valid(""))
	assert.False(t, v.Valid("https://g.co/abc"))
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"google redirect",
			"https://www.google.com/url?q=https%3A%2F%2Fexample.com%2Fhome&sa=U",
			"https://example.com/home",
		},
		{
			"plain url untouched",
			"https://example.com",
			"https://example.com",
		},
		{
			"google non-redirect path untouched",
			"https://www.google.com/maps/place/x",
			"https://www.google.com/maps/place/x",
		},
		{
			"redirect without q untouched",
			"https://www.google.com/url?sa=U",
			"https://www.google.com/url?sa=U",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnwrapRedirect(tt.raw))
		})
	}
}
