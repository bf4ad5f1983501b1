package catalog

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/abhisek/prepwise/internal/assessment"
	"github.com/abhisek/prepwise/internal/progression"
)

func TestDefaultLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	courses := c.Courses()
	if len(courses) < 2 {
		t.Fatalf("got %d courses, want at least 2", len(courses))
	}
	if courses[0].ID != "go-backend" {
		t.Errorf("first course = %q, want go-backend", courses[0].ID)
	}
	if courses[0].Total != 90*time.Minute+2*time.Hour+150*time.Minute {
		t.Errorf("go-backend total = %v", courses[0].Total)
	}
}

func TestCourseReturnsFreshCopy(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	a, err := c.Course(ctx, "go-backend")
	if err != nil {
		t.Fatal(err)
	}
	a.Modules[0].Progress.Status = progression.StatusCompleted
	a.Modules[0].Questions[0].Prompt = "changed"

	b, err := c.Course(ctx, "go-backend")
	if err != nil {
		t.Fatal(err)
	}
	if b.Modules[0].Progress.Status != "" {
		t.Error("progress leaked between copies")
	}
	if b.Modules[0].Questions[0].Prompt == "changed" {
		t.Error("questions shared between copies")
	}

	_, err = c.Course(ctx, "nope")
	if !errors.Is(err, progression.ErrCourseNotFound) {
		t.Errorf("err = %v, want ErrCourseNotFound", err)
	}
}

func TestCatalogDrivesProgression(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	course, err := c.Course(context.Background(), "system-design")
	if err != nil {
		t.Fatal(err)
	}
	pc, err := progression.NewContext("ana", course)
	if err != nil {
		t.Fatal(err)
	}
	progression.InitialProgress(course)
	if err := pc.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if pc.Course.Modules[0].ID != "sd-scalability" {
		t.Errorf("first module = %q", pc.Course.Modules[0].ID)
	}
}

func TestLookups(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	g, ok := c.Company("google")
	if !ok {
		t.Fatal("google not found")
	}
	if g.DifficultyBias != 1.2 {
		t.Errorf("google bias = %v, want 1.2", g.DifficultyBias)
	}
	if g.Weights[assessment.SectionSystem] != 0.25 {
		t.Errorf("google system weight = %v, want 0.25", g.Weights[assessment.SectionSystem])
	}
	if _, ok := c.Company("Unknown Co"); ok {
		t.Error("unexpected company match")
	}

	if _, ok := c.Role("backend engineer"); !ok {
		t.Error("role lookup should ignore case")
	}
	if l, ok := c.Level("Mid-level"); !ok || l.ID != "mid" {
		t.Errorf("level by label = %+v, %v", l, ok)
	}

	pool, err := c.Pool(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := assessment.SelectQuestions(pool, nil, nil); err != nil {
		t.Errorf("embedded pool cannot fill an assessment: %v", err)
	}
}

func TestEmbeddedContentStartsAssessment(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	m := assessment.NewManager(c)
	s, err := m.StartAssessment(context.Background(), "ana", "Backend Engineer", "Amazon", "junior")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Questions) != 6 {
		t.Fatalf("got %d questions", len(s.Questions))
	}
	// cd-1 has no backend skill tag, so the tagged cd-2 and cd-3 lead the Code block.
	if s.Questions[2].ID != "cd-2" || s.Questions[3].ID != "cd-3" {
		t.Errorf("code block = %q, %q; want cd-2, cd-3", s.Questions[2].ID, s.Questions[3].ID)
	}
}

func contentFS(t *testing.T) fstest.MapFS {
	t.Helper()
	courses, err := os.ReadFile("content/courses.yaml")
	if err != nil {
		t.Fatal(err)
	}
	assess, err := os.ReadFile("content/assessment.yaml")
	if err != nil {
		t.Fatal(err)
	}
	return fstest.MapFS{
		"courses.yaml":    {Data: courses},
		"assessment.yaml": {Data: assess},
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	for _, v := range []string{"v2.0.0", "1.0.0", "latest"} {
		fsys := contentFS(t)
		fsys["courses.yaml"].Data = []byte(strings.Replace(string(fsys["courses.yaml"].Data),
			"version: v1.0.0", "version: "+v, 1))
		_, err := Load(fsys)
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("version %q: err = %v, want ErrUnsupportedVersion", v, err)
		}
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		from    string
		to      string
		wantErr string
	}{
		{"bad answer index", "courses.yaml", "correct_answers: [0, 2]", "correct_answers: [0, 9]", "out of range"},
		{"duplicate order", "courses.yaml", "order: 2", "order: 1", "duplicate order"},
		{"bad duration", "courses.yaml", "estimated_time: 90m", "estimated_time: soon", "estimated_time"},
		{"bad bias", "assessment.yaml", "difficulty_bias: 1.2", "difficulty_bias: 0", "difficulty bias"},
		{"thin pool", "assessment.yaml", "section: Logic", "section: Code", "insufficient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := contentFS(t)
			data := string(fsys[tt.file].Data)
			if !strings.Contains(data, tt.from) {
				t.Fatalf("fixture missing %q", tt.from)
			}
			replaced := strings.ReplaceAll(data, tt.from, tt.to)
			fsys[tt.file].Data = []byte(replaced)

			_, err := Load(fsys)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
