package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ModuleProgressRecord is the persisted progress of one learner in one module.
type ModuleProgressRecord struct {
	LearnerID       string
	CourseID        string
	ModuleID        string
	Status          string
	TheoryCompleted bool
	VideoCompleted  bool
	QuizScore       *int
	QuizAnswers     [][]int
	ProjectStatus   string
	DeployedLink    string
	GithubLink      string
	UpdatedAt       time.Time
}

// ProgressEventData captures a single progression transition.
type ProgressEventData struct {
	LearnerID string
	CourseID  string
	ModuleID  string
	Trigger   string
	From      string
	To        string
	QuizScore *int
}

// ProgressEventRecord is a stored progression event.
type ProgressEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	ProgressEventData
}

// ProgressRepo persists module progress and its event trail.
type ProgressRepo interface {
	// Load returns all module progress rows for a learner in a course.
	// An empty result means the learner is not enrolled.
	Load(ctx context.Context, learnerID, courseID string) ([]ModuleProgressRecord, error)

	// Apply upserts the given progress rows and appends the events in one
	// transaction.
	Apply(ctx context.Context, updates []ModuleProgressRecord, events []ProgressEventData) error

	// Courses lists the course ids a learner is enrolled in.
	Courses(ctx context.Context, learnerID string) ([]string, error)

	// Events returns a learner's progression events, newest first.
	Events(ctx context.Context, learnerID string, opts QueryOpts) ([]ProgressEventRecord, error)
}

// SectionScoreData is one section of a persisted assessment result.
type SectionScoreData struct {
	Section    string  `json:"section"`
	Score      int     `json:"score"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	AvgSeconds float64 `json:"avg_seconds"`
	Weight     float64 `json:"weight"`
}

// AssessmentResultData captures a completed assessment.
type AssessmentResultData struct {
	SessionID  string
	LearnerID  string
	Role       string
	Company    string
	Level      string
	Overall    int
	Alignment  int
	Band       string
	Sections   []SectionScoreData
	Strengths  []string
	Weaknesses []string
}

// AssessmentResultRecord is a stored assessment result.
type AssessmentResultRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AssessmentResultData
}

// ResultRepo persists completed assessment results.
type ResultRepo interface {
	// SaveResult stores a result. Saving the same session twice is an error.
	SaveResult(ctx context.Context, data AssessmentResultData) error

	// ListResults returns a learner's results, newest first.
	ListResults(ctx context.Context, learnerID string, opts QueryOpts) ([]AssessmentResultRecord, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
	SessionID    string // assessment session the call served, if any
	LearnerID    string
}

// LLMEventFilter narrows QueryLLMEvents. Empty fields match everything.
type LLMEventFilter struct {
	Purpose   string
	SessionID string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events matching filter, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts, filter LLMEventFilter) ([]LLMEventRecord, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates calls and tokens per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates calls and tokens per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
