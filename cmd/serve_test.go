package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapline/prospect-cli/internal/model"
	"github.com/mapline/prospect-cli/internal/scorer"
)

func testScoreHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	cfg := scorer.DefaultScorerConfig()
	require.NoError(t, scorer.ValidateConfig(cfg))
	return scoreHandler(scorer.New(cfg, nil))
}

func TestScoreHandler_Valid(t *testing.T) {
	handler := testScoreHandler(t)

	payload := `{
		"business_name": "Acme Plumbing",
		"rating": 4.6,
		"reviews": 150,
		"website": "https://acmeplumbing.com",
		"phone": "+15125552671",
		"address": "123 Main St"
	}`
	req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var scored model.ScoredListing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scored))
	assert.Equal(t, 75, scored.LeadScore)
	assert.Equal(t, model.LeadTypeHigh, scored.LeadType)
	assert.NotEmpty(t, scored.ClassificationReason)
}

func TestScoreHandler_BadBody(t *testing.T) {
	handler := testScoreHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/score", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestScoreHandler_MissingName(t *testing.T) {
	handler := testScoreHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(`{"rating": 4.0}`))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestScoreHandler_InvalidRating(t *testing.T) {
	handler := testScoreHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/score",
		strings.NewReader(`{"business_name": "Bad Data Inc", "rating": 9.9}`))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "rating")
}
