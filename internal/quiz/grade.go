package quiz

import (
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch is returned when the answer list does not line up with the
// question list.
var ErrShapeMismatch = errors.New("answers do not match questions")

// Result is the outcome of grading one quiz attempt.
type Result struct {
	Score       int    // 0-100
	Correct     int    // number of exactly-matched questions
	PerQuestion []bool // index-aligned with the question list
}

// Passed reports whether the attempt met PassThreshold.
func (r *Result) Passed() bool {
	return Passed(r.Score)
}

// Passed reports whether score meets PassThreshold.
func Passed(score int) bool {
	return score >= PassThreshold
}

// Grade scores a quiz attempt. A question counts as correct only when the
// selected set equals the answer key exactly; subsets and supersets score
// nothing.
func Grade(questions []Question, answers []AnswerSet) (*Result, error) {
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("%w: got %d answers for %d questions",
			ErrShapeMismatch, len(answers), len(questions))
	}

	res := &Result{PerQuestion: make([]bool, len(questions))}
	for i, q := range questions {
		if AnswerSet(q.CorrectAnswers).Equal(answers[i]) {
			res.PerQuestion[i] = true
			res.Correct++
		}
	}
	res.Score = Percent(res.Correct, len(questions))
	return res, nil
}

// Percent returns round(100 * part / total), or 0 when total is zero.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
