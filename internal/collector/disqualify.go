package collector

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mapline/prospect-cli/internal/config"
	"github.com/mapline/prospect-cli/internal/model"
)

// Disqualify reports whether a listing should be excluded from outreach and
// why. Disqualified listings are still scored and stored; the flag keeps them
// out of qualified exports.
func Disqualify(l model.Listing, cfg config.CollectConfig) (bool, string) {
	name := strings.ToLower(l.Name)
	host := websiteHost(l.Website)

	for _, kw := range cfg.BrandKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(name, kw) {
			return true, fmt.Sprintf("brand keyword %q in name", kw)
		}
		if host != "" && strings.Contains(host, kw) {
			return true, fmt.Sprintf("brand keyword %q in website domain", kw)
		}
	}

	// A business with no website but a strong rating and plenty of reviews
	// is doing fine offline and is a poor prospect for web services.
	if l.Website == "" && l.Rating != nil && l.ReviewCount != nil &&
		*l.Rating >= cfg.OfflineRating && *l.ReviewCount >= cfg.OfflineReviews {
		return true, fmt.Sprintf("established offline presence (rating %.1f, %d reviews)",
			*l.Rating, *l.ReviewCount)
	}

	return false, ""
}

func websiteHost(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
