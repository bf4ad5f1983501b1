package quiz

import (
	"errors"
	"fmt"
	"sort"
)

// PassThreshold is the minimum quiz score that counts as a pass.
const PassThreshold = 70

// ErrInvalidQuestion is returned when a question's answer key is malformed.
var ErrInvalidQuestion = errors.New("invalid quiz question")

// Question is a single multi-select quiz question.
type Question struct {
	ID             string   `yaml:"id"`
	Prompt         string   `yaml:"prompt"`
	Options        []string `yaml:"options"`
	CorrectAnswers []int    `yaml:"correct_answers"`
	Explanation    string   `yaml:"explanation"`
}

// Validate checks that the answer key is non-empty, unique, and within the
// option range.
func (q Question) Validate() error {
	if len(q.CorrectAnswers) == 0 {
		return fmt.Errorf("%w: %q has no correct answers", ErrInvalidQuestion, q.ID)
	}
	seen := make(map[int]bool, len(q.CorrectAnswers))
	for _, idx := range q.CorrectAnswers {
		if idx < 0 || idx >= len(q.Options) {
			return fmt.Errorf("%w: %q answer index %d out of range [0,%d)",
				ErrInvalidQuestion, q.ID, idx, len(q.Options))
		}
		if seen[idx] {
			return fmt.Errorf("%w: %q repeats answer index %d", ErrInvalidQuestion, q.ID, idx)
		}
		seen[idx] = true
	}
	return nil
}

// MultiSelect reports whether the question has more than one correct option.
func (q Question) MultiSelect() bool {
	return len(q.CorrectAnswers) > 1
}

// AnswerSet is the set of option indices a learner selected for one question.
// Order and duplicates are not significant.
type AnswerSet []int

// Normalize returns a sorted copy with duplicates removed.
func (a AnswerSet) Normalize() AnswerSet {
	out := make(AnswerSet, 0, len(a))
	seen := make(map[int]bool, len(a))
	for _, idx := range a {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Equal reports whether both sets contain exactly the same indices.
func (a AnswerSet) Equal(other AnswerSet) bool {
	x, y := a.Normalize(), other.Normalize()
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Contains reports whether idx is selected.
func (a AnswerSet) Contains(idx int) bool {
	for _, v := range a {
		if v == idx {
			return true
		}
	}
	return false
}
