package assessment

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInsufficientPoolSize = errors.New("insufficient questions in pool")

// Requirements is the number of questions to draw per section.
type Requirements map[Section]int

// DefaultRequirements draws two questions from each section.
func DefaultRequirements() Requirements {
	return Requirements{
		SectionLogic:  2,
		SectionCode:   2,
		SectionSystem: 2,
	}
}

// Total returns the number of questions the requirements produce.
func (r Requirements) Total() int {
	n := 0
	for _, c := range r {
		n += c
	}
	return n
}

// SelectQuestions builds an assessment from the pool. Sections come out in
// Sections order; within a section the pool order is kept, except that
// questions tagged with one of the role's skills move ahead. A section with
// fewer questions than required fails the whole selection.
func SelectQuestions(pool []Question, req Requirements, role *Role) ([]Question, error) {
	if req == nil {
		req = DefaultRequirements()
	}
	for sec := range req {
		if _, err := ParseSection(string(sec)); err != nil {
			return nil, err
		}
	}

	tags := role.Tags()
	out := make([]Question, 0, req.Total())
	for _, sec := range Sections {
		want := req[sec]
		if want <= 0 {
			continue
		}

		var block []Question
		for _, q := range pool {
			if q.Section == sec {
				block = append(block, q)
			}
		}
		if len(block) < want {
			return nil, fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientPoolSize, sec, len(block), want)
		}

		if len(tags) > 0 {
			sort.SliceStable(block, func(i, j int) bool {
				return matchesRole(block[i], tags) && !matchesRole(block[j], tags)
			})
		}
		out = append(out, block[:want]...)
	}
	return out, nil
}

func matchesRole(q Question, tags map[string]bool) bool {
	for _, s := range q.Skills {
		if tags[strings.ToLower(s)] {
			return true
		}
	}
	return false
}
