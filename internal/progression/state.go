package progression

// Status is a module's lock state within a course.
type Status string

const (
	StatusLocked    Status = "locked"
	StatusUnlocked  Status = "unlocked"
	StatusCompleted Status = "completed"
)

// ProjectStatus tracks the final project stage of a module.
type ProjectStatus string

const (
	ProjectNone      ProjectStatus = "none"
	ProjectSubmitted ProjectStatus = "submitted"
)

// Stage is the externally observable step a learner may interact with.
// It is derived from the progress flags, never stored.
type Stage string

const (
	StageLocked    Stage = "locked"
	StageTheory    Stage = "theory"
	StageVideo     Stage = "video"
	StageQuiz      Stage = "quiz"
	StageProject   Stage = "project"
	StageCompleted Stage = "completed"
)

// Transition triggers.
const (
	TriggerTheory  = "theory-complete"
	TriggerVideo   = "video-complete"
	TriggerQuiz    = "quiz-graded"
	TriggerProject = "project-submitted"
	TriggerUnlock  = "unlocked"
)

// Transition records a stage change for display and event logging.
type Transition struct {
	ModuleID  string
	From      Stage
	To        Stage
	Trigger   string
	QuizScore *int // set on quiz-graded
}

// statusRank orders statuses so callers can assert monotonic movement.
func statusRank(s Status) int {
	switch s {
	case StatusLocked:
		return 0
	case StatusUnlocked:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

// Advances reports whether moving from -> to keeps the status monotonic.
func Advances(from, to Status) bool {
	return statusRank(to) >= statusRank(from) && statusRank(from) >= 0
}
