package assessment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/prepwise/internal/quiz"
)

// Section is one of the assessment categories.
type Section string

const (
	SectionLogic  Section = "Logic"
	SectionCode   Section = "Code"
	SectionSystem Section = "System Thinking"
)

// Sections lists the sections in the order questions are presented.
var Sections = []Section{SectionLogic, SectionCode, SectionSystem}

// ParseSection resolves a section name, ignoring case.
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections {
		if strings.EqualFold(s, string(sec)) {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// DefaultTimeLimit is used when a question does not set its own limit.
const DefaultTimeLimit = 90

var ErrInvalidQuestion = errors.New("invalid assessment question")

// Question is a timed assessment question.
type Question struct {
	ID          string   `yaml:"id"`
	Section     Section  `yaml:"section"`
	Prompt      string   `yaml:"prompt"`
	Options     []string `yaml:"options"`
	Correct     []int    `yaml:"correct"`
	TimeLimit   int      `yaml:"time_limit"` // seconds
	Skills      []string `yaml:"skills"`
	Explanation string   `yaml:"explanation"`
}

// Validate checks the section, answer key and time limit.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	if _, err := ParseSection(string(q.Section)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidQuestion, q.ID, err)
	}
	if q.TimeLimit < 0 {
		return fmt.Errorf("%w: %s: negative time limit", ErrInvalidQuestion, q.ID)
	}
	key := quiz.Question{ID: q.ID, Options: q.Options, CorrectAnswers: q.Correct}
	if err := key.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	return nil
}

// Limit returns the question's time limit in seconds.
func (q Question) Limit() int {
	if q.TimeLimit <= 0 {
		return DefaultTimeLimit
	}
	return q.TimeLimit
}

// IsCorrect reports whether selected equals the answer key exactly.
func (q Question) IsCorrect(selected quiz.AnswerSet) bool {
	return quiz.AnswerSet(q.Correct).Equal(selected)
}

// MultiSelect reports whether more than one option is correct.
func (q Question) MultiSelect() bool {
	return len(q.Correct) > 1
}
