package assess

import "github.com/abhisek/prepwise/internal/assessment"

// timerTickMsg is sent every second while a question is open. It names the
// question it was scheduled for so ticks outliving an answer are dropped.
type timerTickMsg struct {
	QuestionID string
}

// resultsReadyMsg carries the scored session.
type resultsReadyMsg struct {
	Result *assessment.Result
	Err    error
}
