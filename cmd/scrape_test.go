package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchFileName(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"plumbers in Austin TX", "plumbers_in_austin_tx.csv"},
		{"Roof & Gutter Repair, Waco", "roof___gutter_repair__waco.csv"},
		{"  plumbers  ", "plumbers.csv"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, searchFileName(tt.query), "query %q", tt.query)
	}
}

func TestBuildJobs_QueryFlag(t *testing.T) {
	scrapeJobsFile = ""
	scrapeQuery = "plumbers"
	scrapeCity = "Austin TX"
	scrapePages = 2
	t.Cleanup(func() { scrapeQuery, scrapeCity, scrapePages = "", "", 0 })

	jobs, err := buildJobs()
	assert.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, "plumbers in Austin TX", jobs[0].SearchQuery())
	assert.Equal(t, 2, jobs[0].MaxPages)
}

func TestBuildJobs_NoInput(t *testing.T) {
	scrapeJobsFile = ""
	scrapeQuery = ""

	_, err := buildJobs()
	assert.Error(t, err)
}
