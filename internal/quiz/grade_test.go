package quiz

import (
	"errors"
	"testing"
)

func multiQuestion() Question {
	return Question{
		ID:             "q-multi",
		Prompt:         "Which are goroutine-safe?",
		Options:        []string{"map", "sync.Map", "atomic.Int64", "slice"},
		CorrectAnswers: []int{1, 2},
	}
}

func TestGrade_ExactMatchOnly(t *testing.T) {
	tests := []struct {
		name    string
		answer  AnswerSet
		correct bool
	}{
		{"exact", AnswerSet{1, 2}, true},
		{"exact reversed", AnswerSet{2, 1}, true},
		{"duplicates ignored", AnswerSet{1, 2, 2}, true},
		{"subset", AnswerSet{1}, false},
		{"superset", AnswerSet{1, 2, 3}, false},
		{"empty", AnswerSet{}, false},
		{"nil", nil, false},
		{"disjoint", AnswerSet{0, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Grade([]Question{multiQuestion()}, []AnswerSet{tt.answer})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.PerQuestion[0] != tt.correct {
				t.Errorf("PerQuestion[0] = %v, want %v", res.PerQuestion[0], tt.correct)
			}
		})
	}
}

func TestGrade_Score(t *testing.T) {
	questions := make([]Question, 6)
	for i := range questions {
		questions[i] = Question{
			ID:             "q",
			Options:        []string{"a", "b", "c"},
			CorrectAnswers: []int{0},
		}
	}

	tests := []struct {
		correct int
		want    int
	}{
		{0, 0},
		{1, 17},
		{2, 33},
		{3, 50},
		{4, 67},
		{5, 83},
		{6, 100},
	}

	for _, tt := range tests {
		answers := make([]AnswerSet, len(questions))
		for i := range answers {
			if i < tt.correct {
				answers[i] = AnswerSet{0}
			} else {
				answers[i] = AnswerSet{1}
			}
		}
		res, err := Grade(questions, answers)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Score != tt.want {
			t.Errorf("%d/6 correct: Score = %d, want %d", tt.correct, res.Score, tt.want)
		}
		if res.Correct != tt.correct {
			t.Errorf("Correct = %d, want %d", res.Correct, tt.correct)
		}
	}
}

func TestGrade_ShapeMismatch(t *testing.T) {
	questions := []Question{multiQuestion(), multiQuestion()}
	_, err := Grade(questions, []AnswerSet{{1, 2}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestGrade_NoQuestions(t *testing.T) {
	res, err := Grade(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Score != 0 {
		t.Errorf("Score = %d, want 0", res.Score)
	}
}

func TestPassed(t *testing.T) {
	if Passed(69) {
		t.Error("69 should not pass")
	}
	if !Passed(70) {
		t.Error("70 should pass")
	}
}

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{"valid", multiQuestion(), false},
		{"empty key", Question{ID: "x", Options: []string{"a"}}, true},
		{"out of range", Question{ID: "x", Options: []string{"a"}, CorrectAnswers: []int{1}}, true},
		{"negative", Question{ID: "x", Options: []string{"a"}, CorrectAnswers: []int{-1}}, true},
		{"duplicate", Question{ID: "x", Options: []string{"a", "b"}, CorrectAnswers: []int{0, 0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidQuestion) {
				t.Errorf("err = %v, want ErrInvalidQuestion", err)
			}
		})
	}
}
