package assessment

import (
	"errors"
	"sync"

	"github.com/abhisek/prepwise/internal/quiz"
)

var (
	ErrSessionNotFound        = errors.New("assessment session not found")
	ErrSessionAlreadyComplete = errors.New("assessment session already complete")
	ErrSessionIncomplete      = errors.New("assessment session not complete")
	ErrQuestionMismatch       = errors.New("question is not the current question")
	ErrUnknownRole            = errors.New("unknown role")
	ErrUnknownLevel           = errors.New("unknown experience level")
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusComplete  Status = "complete"
	StatusAbandoned Status = "abandoned"
)

// Session is one timed mock assessment.
type Session struct {
	ID        string
	LearnerID string
	Role      *Role
	Company   CompanyProfile
	Level     Level
	Questions []Question
	Responses []Response

	// Remaining is the seconds left on the current question.
	Remaining int
	Status    Status

	mu     sync.Mutex
	result *Result
}

// Current returns the question awaiting an answer, or nil when complete.
func (s *Session) Current() *Question {
	if s.Status != StatusActive || len(s.Responses) >= len(s.Questions) {
		return nil
	}
	return &s.Questions[len(s.Responses)]
}

// snapshot returns a copy safe to hand out. Caller holds s.mu.
func (s *Session) snapshot() *Session {
	out := &Session{
		ID:        s.ID,
		LearnerID: s.LearnerID,
		Role:      s.Role,
		Company:   s.Company,
		Level:     s.Level,
		Questions: append([]Question(nil), s.Questions...),
		Responses: append([]Response(nil), s.Responses...),
		Remaining: s.Remaining,
		Status:    s.Status,
	}
	return out
}

// record appends a response for the current question and advances.
// Caller holds s.mu and has checked the session is active.
func (s *Session) record(q *Question, selected quiz.AnswerSet, elapsed int) Response {
	selected = selected.Normalize()
	r := Response{
		QuestionID:     q.ID,
		Section:        q.Section,
		Correct:        q.IsCorrect(selected),
		ElapsedSeconds: max(0, min(elapsed, q.Limit())),
		Selected:       selected,
	}
	s.Responses = append(s.Responses, r)

	if next := s.Current(); next != nil {
		s.Remaining = next.Limit()
	} else {
		s.Remaining = 0
		s.Status = StatusComplete
	}
	return r
}

// Advance reports the session state after an answer or tick.
type Advance struct {
	SessionID string

	// Recorded is the response written by this call, nil when nothing was
	// recorded (a tick that only decremented, or a stale tick).
	Recorded *Response

	// Question is the current question after the call, nil when complete.
	Question *Question
	Index    int

	// Remaining is the seconds left on Question.
	Remaining int

	// TimedOut is set when this call recorded a timeout.
	TimedOut bool

	Complete bool
}

// advance builds an Advance from the session. Caller holds s.mu.
func (s *Session) advance(recorded *Response, timedOut bool) *Advance {
	a := &Advance{
		SessionID: s.ID,
		Recorded:  recorded,
		Index:     len(s.Responses),
		Remaining: s.Remaining,
		TimedOut:  timedOut,
		Complete:  s.Status == StatusComplete,
	}
	if q := s.Current(); q != nil {
		qc := *q
		a.Question = &qc
	}
	return a
}
