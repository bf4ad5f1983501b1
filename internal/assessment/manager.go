package assessment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/store"
)

// Catalog supplies the question pool and the role, company and level
// definitions.
type Catalog interface {
	Pool(ctx context.Context) ([]Question, error)
	Company(name string) (CompanyProfile, bool)
	Role(name string) (Role, bool)
	Level(id string) (Level, bool)
}

// DefaultKeepFinished is how many completed sessions stay readable.
const DefaultKeepFinished = 16

// Manager owns in-flight assessment sessions. Completed sessions are kept
// for result reads until keepFinished newer ones have completed.
type Manager struct {
	catalog      Catalog
	results      store.ResultRepo // optional
	req          Requirements
	keepFinished int
	logger       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	finished []string // completed session IDs, oldest first
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithResultRepo persists results when a session completes.
func WithResultRepo(repo store.ResultRepo) ManagerOption {
	return func(m *Manager) { m.results = repo }
}

// WithRequirements overrides the per-section question counts.
func WithRequirements(req Requirements) ManagerOption {
	return func(m *Manager) { m.req = req }
}

// WithKeepFinished bounds how many completed sessions are retained.
func WithKeepFinished(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.keepFinished = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a session manager.
func NewManager(catalog Catalog, opts ...ManagerOption) *Manager {
	m := &Manager{
		catalog:      catalog,
		req:          DefaultRequirements(),
		keepFinished: DefaultKeepFinished,
		logger:       zap.NewNop(),
		sessions:     make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("assessment")
	return m
}

// StartAssessment resolves the configuration and creates a session. An
// empty role skips skill prioritisation; an unknown company gets a custom
// profile.
func (m *Manager) StartAssessment(ctx context.Context, learnerID, roleName, companyName, levelID string) (*Session, error) {
	var role *Role
	if strings.TrimSpace(roleName) != "" {
		r, ok := m.catalog.Role(roleName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, roleName)
		}
		role = &r
	}

	level, ok := m.catalog.Level(levelID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, levelID)
	}

	company, ok := m.catalog.Company(companyName)
	if !ok {
		company = CustomCompany(companyName)
	}

	pool, err := m.catalog.Pool(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	questions, err := SelectQuestions(pool, m.req, role)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        uuid.NewString(),
		LearnerID: learnerID,
		Role:      role,
		Company:   company,
		Level:     level,
		Questions: questions,
		Status:    StatusActive,
	}
	if len(questions) > 0 {
		s.Remaining = questions[0].Limit()
	} else {
		s.Status = StatusComplete
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	if s.Status == StatusComplete {
		m.retireLocked(s.ID)
	}
	m.mu.Unlock()

	m.logger.Info("assessment started",
		zap.String("session", s.ID),
		zap.String("learner", learnerID),
		zap.String("role", roleName),
		zap.String("company", company.Name),
		zap.Bool("custom_company", company.Custom),
		zap.String("level", level.ID),
		zap.Int("questions", len(questions)))

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// Session returns a copy of a session's current state.
func (m *Manager) Session(sessionID string) (*Session, error) {
	s, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// AnswerQuestion records the learner's selection for the current question.
// Recording the answer retires the question's timer: later ticks naming it
// are ignored.
func (m *Manager) AnswerQuestion(ctx context.Context, sessionID, questionID string, selected quiz.AnswerSet) (*Advance, error) {
	s, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status == StatusComplete {
		return nil, fmt.Errorf("%w: %s", ErrSessionAlreadyComplete, sessionID)
	}
	q := s.Current()
	if q == nil || q.ID != questionID {
		return nil, fmt.Errorf("%w: %q", ErrQuestionMismatch, questionID)
	}

	r := s.record(q, selected, q.Limit()-s.Remaining)
	m.logger.Debug("answer recorded",
		zap.String("session", sessionID),
		zap.String("question", questionID),
		zap.Bool("correct", r.Correct),
		zap.Int("elapsed", r.ElapsedSeconds))

	m.finishLocked(ctx, s)
	return s.advance(&r, false), nil
}

// Tick advances the current question's countdown by one second. At zero the
// question is recorded as a timeout (incorrect, full time limit elapsed) and
// the session moves on. A tick for a question that is no longer current is
// ignored.
func (m *Manager) Tick(ctx context.Context, sessionID, questionID string) (*Advance, error) {
	s, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.Current()
	if q == nil || q.ID != questionID {
		return s.advance(nil, false), nil
	}

	s.Remaining--
	if s.Remaining > 0 {
		return s.advance(nil, false), nil
	}

	r := s.record(q, nil, q.Limit())
	m.logger.Debug("question timed out",
		zap.String("session", sessionID),
		zap.String("question", questionID))

	m.finishLocked(ctx, s)
	return s.advance(&r, true), nil
}

// GetResults returns the scored result of a completed session.
func (m *Manager) GetResults(ctx context.Context, sessionID string) (*Result, error) {
	s, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusComplete {
		return nil, fmt.Errorf("%w: %d of %d answered", ErrSessionIncomplete, len(s.Responses), len(s.Questions))
	}
	if s.result == nil {
		if err := m.scoreLocked(s); err != nil {
			return nil, err
		}
	}
	return s.result.Clone(), nil
}

// Abandon discards an unfinished session. Its responses are never scored.
func (m *Manager) Abandon(_ context.Context, sessionID string) error {
	s, err := m.get(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.Status == StatusComplete {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionAlreadyComplete, sessionID)
	}
	s.Status = StatusAbandoned
	answered := len(s.Responses)
	s.mu.Unlock()

	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	m.logger.Info("assessment abandoned",
		zap.String("session", sessionID),
		zap.Int("answered", answered))
	return nil
}

func (m *Manager) get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s, nil
}

// finishLocked scores and persists a session that just completed.
// Caller holds s.mu; m.mu is taken after it, never before.
func (m *Manager) finishLocked(ctx context.Context, s *Session) {
	if s.Status != StatusComplete || s.result != nil {
		return
	}
	m.mu.Lock()
	m.retireLocked(s.ID)
	m.mu.Unlock()

	if err := m.scoreLocked(s); err != nil {
		m.logger.Error("scoring failed", zap.String("session", s.ID), zap.Error(err))
		return
	}

	res := s.result
	m.logger.Info("assessment complete",
		zap.String("session", s.ID),
		zap.Int("overall", res.Overall),
		zap.Int("alignment", res.Alignment),
		zap.String("band", string(res.Band)))

	if m.results == nil {
		return
	}
	if err := m.results.SaveResult(ctx, toResultData(res)); err != nil {
		m.logger.Warn("persist result failed", zap.String("session", s.ID), zap.Error(err))
	}
}

// retireLocked queues a completed session for eviction and drops the
// oldest ones beyond keepFinished. m.mu must be held.
func (m *Manager) retireLocked(id string) {
	m.finished = append(m.finished, id)
	for len(m.finished) > m.keepFinished {
		delete(m.sessions, m.finished[0])
		m.finished = m.finished[1:]
	}
}

func (m *Manager) scoreLocked(s *Session) error {
	res, err := Score(s.Questions, s.Responses, s.Company)
	if err != nil {
		return err
	}
	res.SessionID = s.ID
	res.LearnerID = s.LearnerID
	res.Level = s.Level.ID
	if s.Role != nil {
		res.Role = s.Role.Name
	}
	s.result = res
	return nil
}

func toResultData(r *Result) store.AssessmentResultData {
	data := store.AssessmentResultData{
		SessionID:  r.SessionID,
		LearnerID:  r.LearnerID,
		Role:       r.Role,
		Company:    r.Company,
		Level:      r.Level,
		Overall:    r.Overall,
		Alignment:  r.Alignment,
		Band:       string(r.Band),
		Strengths:  r.Strengths,
		Weaknesses: r.Weaknesses,
	}
	for _, c := range r.Sections {
		data.Sections = append(data.Sections, store.SectionScoreData{
			Section:    string(c.Section),
			Score:      c.Score,
			Correct:    c.Correct,
			Total:      c.Total,
			AvgSeconds: c.AvgSeconds,
			Weight:     c.Weight,
		})
	}
	return data
}

// FromRecord rebuilds a Result from its persisted form.
func FromRecord(rec store.AssessmentResultRecord) *Result {
	r := &Result{
		SessionID:  rec.SessionID,
		LearnerID:  rec.LearnerID,
		Role:       rec.Role,
		Company:    rec.Company,
		Level:      rec.Level,
		Overall:    rec.Overall,
		Alignment:  rec.Alignment,
		Band:       Band(rec.Band),
		Strengths:  rec.Strengths,
		Weaknesses: rec.Weaknesses,
	}
	for _, c := range rec.Sections {
		r.Sections = append(r.Sections, SectionResult{
			Section:    Section(c.Section),
			Score:      c.Score,
			Correct:    c.Correct,
			Total:      c.Total,
			AvgSeconds: c.AvgSeconds,
			Weight:     c.Weight,
		})
	}
	return r
}
