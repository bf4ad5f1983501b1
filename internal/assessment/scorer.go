package assessment

import (
	"fmt"
	"math"
	"slices"

	"github.com/abhisek/prepwise/internal/quiz"
)

// Alignment formula constants.
const (
	alignmentScale  = 0.8
	alignmentOffset = 10
)

// Tag thresholds: above StrongAbove is a strength, below WeakBelow a weakness.
const (
	StrongAbove = 70
	WeakBelow   = 70
)

// Band summarises overall readiness.
type Band string

const (
	BandReady        Band = "ready"
	BandDeveloping   Band = "developing"
	BandFoundational Band = "foundational"
)

// BandFor maps an overall score to a readiness band.
func BandFor(overall int) Band {
	switch {
	case overall >= 80:
		return BandReady
	case overall >= 50:
		return BandDeveloping
	}
	return BandFoundational
}

// Response is the recorded outcome of one question.
type Response struct {
	QuestionID     string
	Section        Section
	Correct        bool
	ElapsedSeconds int
	Selected       quiz.AnswerSet
}

// SectionResult is one cell of the result heatmap.
type SectionResult struct {
	Section    Section
	Score      int
	Correct    int
	Total      int
	AvgSeconds float64
	Weight     float64 // company emphasis, informational
}

// Result is the scored outcome of a completed session.
type Result struct {
	SessionID  string
	LearnerID  string
	Role       string
	Company    string
	Level      string
	Sections   []SectionResult
	Overall    int
	Alignment  int
	Band       Band
	Strengths  []string
	Weaknesses []string
}

// Clone returns a copy that shares no slices with r.
func (r *Result) Clone() *Result {
	out := *r
	out.Sections = slices.Clone(r.Sections)
	out.Strengths = slices.Clone(r.Strengths)
	out.Weaknesses = slices.Clone(r.Weaknesses)
	return &out
}

// Section returns the heatmap cell for sec.
func (r *Result) Section(sec Section) (SectionResult, bool) {
	for _, s := range r.Sections {
		if s.Section == sec {
			return s, true
		}
	}
	return SectionResult{}, false
}

type tagRule struct {
	section   Section
	strengths []string
	weakness  []string
}

var tagRules = []tagRule{
	{
		section:   SectionLogic,
		strengths: []string{"Logical reasoning", "Problem decomposition"},
		weakness:  []string{"Logical reasoning under time pressure"},
	},
	{
		section:   SectionCode,
		strengths: []string{"Code comprehension"},
		weakness:  []string{"Data structures and algorithms", "Reading and tracing code"},
	},
	{
		section:   SectionSystem,
		strengths: []string{"System design intuition"},
		weakness:  []string{"Scalability and trade-off analysis"},
	},
}

// Score computes the result for a set of responses. responses must hold
// exactly one entry per question, in question order.
func Score(questions []Question, responses []Response, company CompanyProfile) (*Result, error) {
	if len(responses) != len(questions) {
		return nil, fmt.Errorf("%w: %d of %d questions answered", ErrSessionIncomplete, len(responses), len(questions))
	}
	for i, q := range questions {
		if responses[i].QuestionID != q.ID {
			return nil, fmt.Errorf("%w: response %d is for %q, expected %q",
				ErrQuestionMismatch, i, responses[i].QuestionID, q.ID)
		}
	}

	bias := company.DifficultyBias
	if bias <= 0 {
		bias = DefaultBias
	}

	type acc struct{ correct, total, seconds int }
	bySection := make(map[Section]*acc, len(Sections))
	for i, r := range responses {
		sec := questions[i].Section
		a := bySection[sec]
		if a == nil {
			a = &acc{}
			bySection[sec] = a
		}
		a.total++
		a.seconds += r.ElapsedSeconds
		if r.Correct {
			a.correct++
		}
	}

	res := &Result{Company: company.Name}
	sum := 0
	for _, sec := range Sections {
		a := bySection[sec]
		if a == nil {
			continue
		}
		cell := SectionResult{
			Section:    sec,
			Score:      quiz.Percent(a.correct, a.total),
			Correct:    a.correct,
			Total:      a.total,
			AvgSeconds: float64(a.seconds) / float64(a.total),
			Weight:     company.Weights[sec],
		}
		res.Sections = append(res.Sections, cell)
		sum += cell.Score
	}
	if len(res.Sections) > 0 {
		res.Overall = int(math.Round(float64(sum) / float64(len(res.Sections))))
	}
	res.Alignment = Alignment(res.Overall, bias)
	res.Band = BandFor(res.Overall)

	for _, rule := range tagRules {
		cell, ok := res.Section(rule.section)
		if !ok {
			continue
		}
		switch {
		case cell.Score > StrongAbove:
			res.Strengths = append(res.Strengths, rule.strengths...)
		case cell.Score < WeakBelow:
			res.Weaknesses = append(res.Weaknesses, rule.weakness...)
		}
	}
	return res, nil
}

// Alignment returns round(overall * bias * 0.8 + 10) clamped to [0, 100].
func Alignment(overall int, bias float64) int {
	v := int(math.Round(float64(overall)*bias*alignmentScale + alignmentOffset))
	return max(0, min(100, v))
}
