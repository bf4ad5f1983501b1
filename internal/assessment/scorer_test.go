package assessment

import (
	"errors"
	"slices"
	"testing"
)

func sixSelected(t *testing.T) []Question {
	t.Helper()
	qs, err := SelectQuestions(testPool(2), nil, nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	return qs
}

// responsesFor marks the first correct[sec] questions of each section right.
func responsesFor(qs []Question, correct map[Section]int) []Response {
	seen := map[Section]int{}
	out := make([]Response, len(qs))
	for i, q := range qs {
		out[i] = Response{
			QuestionID:     q.ID,
			Section:        q.Section,
			Correct:        seen[q.Section] < correct[q.Section],
			ElapsedSeconds: 30,
		}
		seen[q.Section]++
	}
	return out
}

func TestScore_ScenarioB(t *testing.T) {
	qs := sixSelected(t)
	responses := responsesFor(qs, map[Section]int{SectionLogic: 2, SectionCode: 0, SectionSystem: 1})

	res, err := Score(qs, responses, CompanyProfile{Name: "Acme", DifficultyBias: 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[Section]int{SectionLogic: 100, SectionCode: 0, SectionSystem: 50}
	for sec, score := range want {
		cell, ok := res.Section(sec)
		if !ok {
			t.Fatalf("missing section %s", sec)
		}
		if cell.Score != score {
			t.Errorf("%s = %d, want %d", sec, cell.Score, score)
		}
	}
	if res.Overall != 50 {
		t.Errorf("overall = %d, want 50", res.Overall)
	}
	if res.Alignment != 50 { // 50 * 1.0 * 0.8 + 10
		t.Errorf("alignment = %d, want 50", res.Alignment)
	}
	if res.Band != BandDeveloping {
		t.Errorf("band = %s, want developing", res.Band)
	}
	if !slices.Contains(res.Strengths, "Logical reasoning") {
		t.Errorf("strengths = %v, want logic strength", res.Strengths)
	}
	if !slices.Contains(res.Weaknesses, "Data structures and algorithms") {
		t.Errorf("weaknesses = %v, want code weakness", res.Weaknesses)
	}
}

func TestScore_Bounds(t *testing.T) {
	qs := sixSelected(t)
	for l := 0; l <= 2; l++ {
		for c := 0; c <= 2; c++ {
			for s := 0; s <= 2; s++ {
				res, err := Score(qs, responsesFor(qs, map[Section]int{
					SectionLogic: l, SectionCode: c, SectionSystem: s,
				}), CompanyProfile{Name: "x", DifficultyBias: 1.2})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Overall < 0 || res.Overall > 100 {
					t.Errorf("overall %d out of range", res.Overall)
				}
				if res.Alignment < 0 || res.Alignment > 100 {
					t.Errorf("alignment %d out of range", res.Alignment)
				}
				for _, cell := range res.Sections {
					if cell.Score < 0 || cell.Score > 100 {
						t.Errorf("%s score %d out of range", cell.Section, cell.Score)
					}
				}
			}
		}
	}
}

func TestAlignment(t *testing.T) {
	tests := []struct {
		overall int
		bias    float64
		want    int
	}{
		{0, 1.0, 10},
		{50, 1.0, 50},
		{100, 1.0, 90},
		{100, 1.2, 100}, // 106 clamped
		{100, 2.0, 100},
		{75, 1.1, 76},
	}
	for _, tt := range tests {
		if got := Alignment(tt.overall, tt.bias); got != tt.want {
			t.Errorf("Alignment(%d, %v) = %d, want %d", tt.overall, tt.bias, got, tt.want)
		}
	}
}

func TestScore_WeightsAreInformational(t *testing.T) {
	qs := sixSelected(t)
	responses := responsesFor(qs, map[Section]int{SectionLogic: 2, SectionCode: 1, SectionSystem: 0})

	plain, err := Score(qs, responses, CompanyProfile{Name: "a", DifficultyBias: 1})
	if err != nil {
		t.Fatal(err)
	}
	weighted, err := Score(qs, responses, CompanyProfile{
		Name: "b", DifficultyBias: 1,
		Weights: map[Section]float64{SectionLogic: 0.1, SectionCode: 0.7, SectionSystem: 0.2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if plain.Overall != weighted.Overall {
		t.Errorf("weights changed overall: %d vs %d", plain.Overall, weighted.Overall)
	}
	if cell, _ := weighted.Section(SectionCode); cell.Weight != 0.7 {
		t.Errorf("code weight = %v, want 0.7", cell.Weight)
	}
}

func TestScore_ThresholdIsExclusive(t *testing.T) {
	// A section at exactly 70 is neither a strength nor a weakness.
	qs := make([]Question, 10)
	responses := make([]Response, 10)
	for i := range qs {
		qs[i] = Question{ID: string(rune('a' + i)), Section: SectionLogic}
		responses[i] = Response{QuestionID: qs[i].ID, Section: SectionLogic, Correct: i < 7}
	}
	res, err := Score(qs, responses, CompanyProfile{Name: "x", DifficultyBias: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Strengths) != 0 || len(res.Weaknesses) != 0 {
		t.Errorf("strengths=%v weaknesses=%v, want none", res.Strengths, res.Weaknesses)
	}
}

func TestScore_RequiresEveryResponse(t *testing.T) {
	qs := sixSelected(t)
	responses := responsesFor(qs, nil)

	if _, err := Score(qs, responses[:5], CompanyProfile{Name: "x", DifficultyBias: 1}); !errors.Is(err, ErrSessionIncomplete) {
		t.Errorf("err = %v, want ErrSessionIncomplete", err)
	}

	responses[0], responses[1] = responses[1], responses[0]
	if _, err := Score(qs, responses, CompanyProfile{Name: "x", DifficultyBias: 1}); !errors.Is(err, ErrQuestionMismatch) {
		t.Errorf("err = %v, want ErrQuestionMismatch", err)
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		overall int
		want    Band
	}{
		{100, BandReady}, {80, BandReady}, {79, BandDeveloping}, {50, BandDeveloping}, {49, BandFoundational}, {0, BandFoundational},
	}
	for _, tt := range tests {
		if got := BandFor(tt.overall); got != tt.want {
			t.Errorf("BandFor(%d) = %s, want %s", tt.overall, got, tt.want)
		}
	}
}
