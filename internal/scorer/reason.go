package scorer

import (
	"fmt"
	"strings"

	"github.com/mapline/prospect-cli/internal/model"
)

// ReasonFormatter renders the structured scoring signals into the
// human-readable classification reason. Formatting is separate from scoring
// so presentation can change without touching the point tables.
type ReasonFormatter interface {
	Format(signals []model.Signal) string
}

// SemicolonFormatter renders signals as "Observed (+N)" fragments joined
// with "; ", e.g. "No website detected (+0); Rating 4.6 (+20); 120 reviews
// (+20); Phone available (+10)".
type SemicolonFormatter struct{}

func (SemicolonFormatter) Format(signals []model.Signal) string {
	parts := make([]string, 0, len(signals))
	for _, sig := range signals {
		parts = append(parts, fmt.Sprintf("%s (+%d)", sig.Observed, sig.Points))
	}
	return strings.Join(parts, "; ")
}
