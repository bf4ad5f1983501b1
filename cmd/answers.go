package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/prepwise/internal/quiz"
)

// parseAnswers reads quiz answers written as option indexes, comma
// separated within a question and semicolon separated between questions:
// "0,2;1;;3". An empty segment is an unanswered question.
func parseAnswers(s string) ([]quiz.AnswerSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("no answers given")
	}
	parts := strings.Split(s, ";")
	out := make([]quiz.AnswerSet, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			out[i] = quiz.AnswerSet{}
			continue
		}
		for _, f := range strings.Split(part, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("question %d: invalid option %q", i+1, f)
			}
			out[i] = append(out[i], n)
		}
	}
	return out, nil
}
