// Package screens holds the TUI screens and what they share.
package screens

import (
	"github.com/abhisek/prepwise/internal/assessment"
	"github.com/abhisek/prepwise/internal/catalog"
	"github.com/abhisek/prepwise/internal/coach"
	"github.com/abhisek/prepwise/internal/store"
)

// Deps are the services screens call into. Coach and Results may be nil.
type Deps struct {
	Manager *assessment.Manager
	Catalog *catalog.Catalog
	Coach   *coach.Coach
	Results store.ResultRepo
	Learner string
}

// CourseTitles lists catalog course titles for the coach prompt.
func (d Deps) CourseTitles() []string {
	if d.Catalog == nil {
		return nil
	}
	var out []string
	for _, c := range d.Catalog.Courses() {
		out = append(out, c.Title)
	}
	return out
}
