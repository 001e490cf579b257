package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapline/prospect-cli/internal/model"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	cfg := DefaultScorerConfig()
	require.NoError(t, ValidateConfig(cfg))
	return New(cfg, nil)
}

func TestRatingScore_Bands(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		rating float64
		want   int
	}{
		{0, 5},
		{3.49, 5},
		{3.5, 10},
		{3.99, 10},
		{4.0, 15},
		{4.49, 15},
		{4.5, 20},
		{5.0, 20},
	}

	for _, tt := range tests {
		got, err := s.ratingScore(floatPtr(tt.rating))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "rating %.2f", tt.rating)
	}
}

func TestRatingScore_Absent(t *testing.T) {
	s := newTestScorer(t)
	got, err := s.ratingScore(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestRatingScore_Monotonic(t *testing.T) {
	s := newTestScorer(t)

	prev := -1
	for r := 0.0; r <= 5.0; r += 0.05 {
		got, err := s.ratingScore(floatPtr(r))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev, "rating %.2f", r)
		prev = got
	}
}

func TestRatingScore_OutOfRange(t *testing.T) {
	s := newTestScorer(t)

	for _, r := range []float64{-0.1, 5.01, 100} {
		_, err := s.ratingScore(floatPtr(r))
		require.Error(t, err, "rating %.2f", r)
		assert.True(t, model.IsInvalidInput(err))
	}
}

func TestReviewScore_Bands(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{4, 0},
		{5, 5},
		{19, 5},
		{20, 10},
		{49, 10},
		{50, 15},
		{99, 15},
		{100, 20},
		{199, 20},
		{200, 25},
		{5000, 25},
	}

	for _, tt := range tests {
		got, err := s.reviewScore(intPtr(tt.count))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "count %d", tt.count)
	}
}

func TestReviewScore_AbsentAndMonotonic(t *testing.T) {
	s := newTestScorer(t)

	got, err := s.reviewScore(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	prev := -1
	for c := 0; c <= 300; c++ {
		got, err := s.reviewScore(intPtr(c))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev, "count %d", c)
		prev = got
	}
}

func TestReviewScore_Negative(t *testing.T) {
	s := newTestScorer(t)

	_, err := s.reviewScore(intPtr(-1))
	require.Error(t, err)
	assert.True(t, model.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "review_count")
}

func TestContactScore(t *testing.T) {
	s := newTestScorer(t)

	assert.Equal(t, 0, s.contactScore("", ""))
	assert.Equal(t, 10, s.contactScore("555-1234", ""))
	assert.Equal(t, 5, s.contactScore("", "123 Main St"))
	assert.Equal(t, 15, s.contactScore("555-1234", "123 Main St"))
}

func TestClassify_Boundaries(t *testing.T) {
	cfg := DefaultScorerConfig()

	tests := []struct {
		score int
		want  model.LeadType
	}{
		{0, model.LeadTypeLow},
		{39, model.LeadTypeLow},
		{40, model.LeadTypePotential},
		{69, model.LeadTypePotential},
		{70, model.LeadTypeHigh},
		{100, model.LeadTypeHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score, cfg), "score %d", tt.score)
	}
}

func TestScore_AllMaxSignals(t *testing.T) {
	s := newTestScorer(t)

	scored, err := s.Score(model.Listing{
		Name:        "Maxed Out Inc",
		Rating:      floatPtr(5.0),
		ReviewCount: intPtr(250),
		Website:     "https://maxedout.example.com",
		Phone:       "555-0100",
		Address:     "1 Max Way",
	})
	require.NoError(t, err)

	// Component maxima sum to 80; the clamp is a no-op here.
	assert.Equal(t, 20, scored.WebsiteScore)
	assert.Equal(t, 20, scored.RatingScore)
	assert.Equal(t, 25, scored.ReviewScore)
	assert.Equal(t, 15, scored.ContactScore)
	assert.Equal(t, 80, scored.LeadScore)
	assert.Equal(t, model.LeadTypeHigh, scored.LeadType)
}

func TestScore_SumInvariantAndRange(t *testing.T) {
	s := newTestScorer(t)

	listings := []model.Listing{
		{Name: "a"},
		{Name: "b", Rating: floatPtr(3.2), ReviewCount: intPtr(7)},
		{Name: "c", Website: "https://c.example.com", Phone: "1", Address: "x"},
		{Name: "d", Rating: floatPtr(4.8), ReviewCount: intPtr(400), Website: "https://d.example.com", Phone: "1", Address: "x"},
	}

	for _, l := range listings {
		scored, err := s.Score(l)
		require.NoError(t, err)
		sum := scored.WebsiteScore + scored.RatingScore + scored.ReviewScore + scored.ContactScore
		assert.Equal(t, clamp(sum, 0, 100), scored.LeadScore, "listing %s", l.Name)
		assert.GreaterOrEqual(t, scored.LeadScore, 0)
		assert.LessOrEqual(t, scored.LeadScore, 100)
	}
}

func TestScore_EndToEnd(t *testing.T) {
	s := newTestScorer(t)

	scored, err := s.Score(model.Listing{
		Name:        "Acme Plumbing",
		Rating:      floatPtr(4.6),
		ReviewCount: intPtr(150),
		Website:     "https://acmeplumbing.com",
		Phone:       "555-1234",
		Address:     "123 Main St",
	})
	require.NoError(t, err)

	assert.Equal(t, 20, scored.WebsiteScore)
	assert.Equal(t, 20, scored.RatingScore)
	assert.Equal(t, 20, scored.ReviewScore)
	assert.Equal(t, 15, scored.ContactScore)
	assert.Equal(t, 75, scored.LeadScore)
	assert.Equal(t, model.LeadTypeHigh, scored.LeadType)
	assert.True(t, scored.HasWebsite)

	assert.Equal(t,
		"Website detected (+20); Rating 4.6 (+20); 150 reviews (+20); Phone and address available (+15)",
		scored.ClassificationReason,
	)
}

func TestScore_NoSignals(t *testing.T) {
	s := newTestScorer(t)

	scored, err := s.Score(model.Listing{Name: "Ghost Shop"})
	require.NoError(t, err)

	assert.Equal(t, 0, scored.LeadScore)
	assert.Equal(t, model.LeadTypeLow, scored.LeadType)
	assert.False(t, scored.HasWebsite)
	assert.Equal(t,
		"No website detected (+0); Rating unavailable (+0); Review count unavailable (+0); No contact info (+0)",
		scored.ClassificationReason,
	)
}

func TestScore_Idempotent(t *testing.T) {
	s := newTestScorer(t)

	l := model.Listing{
		Name:        "Twice Scored",
		Rating:      floatPtr(4.1),
		ReviewCount: intPtr(42),
		Website:     "https://twice.example.com",
		Phone:       "555-2222",
	}

	first, err := s.Score(l)
	require.NoError(t, err)
	second, err := s.Score(l)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScore_InvalidInputLeavesNeighborsUnaffected(t *testing.T) {
	s := newTestScorer(t)

	good := model.Listing{Name: "ok", Rating: floatPtr(4.0)}
	bad := model.Listing{Name: "bad", Rating: floatPtr(6.0)}

	_, err := s.Score(bad)
	require.Error(t, err)
	assert.True(t, model.IsInvalidInput(err))

	scored, err := s.Score(good)
	require.NoError(t, err)
	assert.Equal(t, 15, scored.RatingScore)
}
