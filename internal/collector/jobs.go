package collector

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
)

// Job describes one collection search. Either Search holds a complete query,
// or Query/City (possibly expanded from Categories/Cities) are combined into
// one.
type Job struct {
	Search     string   `json:"search,omitempty"`
	Query      string   `json:"query,omitempty"`
	City       string   `json:"city,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Cities     []string `json:"cities,omitempty"`
	MaxPages   int      `json:"max_pages,omitempty"`
	Output     string   `json:"output,omitempty"`
}

// SearchQuery returns the text query sent to the search API.
func (j Job) SearchQuery() string {
	if j.Search != "" {
		return j.Search
	}
	if j.Query != "" && j.City != "" {
		return fmt.Sprintf("%s in %s", j.Query, j.City)
	}
	return j.Query
}

// LoadJobs reads a jobs file containing either a single job object or a list
// of jobs, and expands any Categories/Cities grids.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "collector: read jobs file")
	}

	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		var single Job
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, eris.Wrap(err, "collector: parse jobs file")
		}
		jobs = []Job{single}
	}

	expanded := ExpandJobs(jobs)
	if len(expanded) == 0 {
		return nil, eris.New("collector: jobs file produced no searches")
	}
	return expanded, nil
}

// ExpandJobs flattens Categories x Cities grids into one job per
// (category, city) pair. Jobs without a grid pass through unchanged.
func ExpandJobs(jobs []Job) []Job {
	var out []Job
	for _, j := range jobs {
		cats := j.Categories
		if len(cats) == 0 {
			cats = []string{j.Query}
		}
		cities := j.Cities
		if len(cities) == 0 {
			cities = []string{j.City}
		}

		for _, cat := range cats {
			for _, city := range cities {
				job := Job{
					Search:   j.Search,
					Query:    cat,
					City:     city,
					MaxPages: j.MaxPages,
					Output:   j.Output,
				}
				if job.SearchQuery() == "" {
					continue
				}
				out = append(out, job)
			}
		}
	}
	return out
}
