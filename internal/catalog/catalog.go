// Package catalog loads the built-in course and assessment content.
package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/prepwise/internal/assessment"
	"github.com/abhisek/prepwise/internal/progression"
	"github.com/abhisek/prepwise/internal/quiz"
)

// SupportedMajor is the content schema major version this build reads.
const SupportedMajor = "v1"

//go:embed content/*.yaml
var embedded embed.FS

var ErrUnsupportedVersion = errors.New("unsupported content version")

type courseFile struct {
	Version string       `yaml:"version"`
	Courses []courseSpec `yaml:"courses"`
}

type courseSpec struct {
	ID      string       `yaml:"id"`
	Title   string       `yaml:"title"`
	Modules []moduleSpec `yaml:"modules"`
}

type moduleSpec struct {
	ID            string          `yaml:"id"`
	Title         string          `yaml:"title"`
	Order         int             `yaml:"order"`
	EstimatedTime string          `yaml:"estimated_time"`
	Summary       string          `yaml:"summary"`
	VideoURL      string          `yaml:"video_url"`
	Questions     []quiz.Question `yaml:"questions"`
}

type assessmentFile struct {
	Version   string                      `yaml:"version"`
	Levels    []assessment.Level          `yaml:"levels"`
	Roles     []assessment.Role           `yaml:"roles"`
	Companies []assessment.CompanyProfile `yaml:"companies"`
	Questions []assessment.Question       `yaml:"questions"`
}

// CourseInfo summarises a course for listings.
type CourseInfo struct {
	ID      string
	Title   string
	Modules int
	Total   time.Duration
}

// Catalog is read-only content. It implements progression.ContentStore and
// assessment.Catalog.
type Catalog struct {
	courses   map[string]courseSpec
	order     []string
	durations map[string]time.Duration // module id -> estimated time
	levels    []assessment.Level
	roles     []assessment.Role
	companies []assessment.CompanyProfile
	pool      []assessment.Question
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog built from the embedded content.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "content")
		if err != nil {
			defaultErr = err
			return
		}
		defaultCat, defaultErr = Load(sub)
	})
	return defaultCat, defaultErr
}

// Load reads courses.yaml and assessment.yaml from fsys and validates them.
func Load(fsys fs.FS) (*Catalog, error) {
	var cf courseFile
	if err := decode(fsys, "courses.yaml", &cf, &cf.Version); err != nil {
		return nil, err
	}
	var af assessmentFile
	if err := decode(fsys, "assessment.yaml", &af, &af.Version); err != nil {
		return nil, err
	}

	c := &Catalog{
		courses:   make(map[string]courseSpec, len(cf.Courses)),
		durations: make(map[string]time.Duration),
		levels:    af.Levels,
		roles:     af.Roles,
		companies: af.Companies,
		pool:      af.Questions,
	}
	for _, cs := range cf.Courses {
		c.courses[cs.ID] = cs
		c.order = append(c.order, cs.ID)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decode(fsys fs.FS, name string, v any, version *string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if !semver.IsValid(*version) || semver.Major(*version) != SupportedMajor {
		return fmt.Errorf("%w: %s declares %q, need %s.x", ErrUnsupportedVersion, name, *version, SupportedMajor)
	}
	return nil
}

// validate checks every course and the assessment content.
// Returns a combined error describing all problems found, or nil if valid.
func (c *Catalog) validate() error {
	var errs []string

	moduleIDs := make(map[string]bool)
	for _, id := range c.order {
		cs := c.courses[id]
		if len(cs.Modules) == 0 {
			errs = append(errs, fmt.Sprintf("course %q has no modules", id))
		}
		orders := make(map[int]bool)
		for _, m := range cs.Modules {
			if moduleIDs[m.ID] {
				errs = append(errs, fmt.Sprintf("duplicate module ID: %q", m.ID))
			}
			moduleIDs[m.ID] = true
			if orders[m.Order] {
				errs = append(errs, fmt.Sprintf("course %q: duplicate order %d", id, m.Order))
			}
			orders[m.Order] = true

			d, err := time.ParseDuration(m.EstimatedTime)
			if err != nil {
				errs = append(errs, fmt.Sprintf("module %q: estimated_time: %v", m.ID, err))
			}
			c.durations[m.ID] = d

			if len(m.Questions) == 0 {
				errs = append(errs, fmt.Sprintf("module %q has no quiz questions", m.ID))
			}
			for _, q := range m.Questions {
				if err := q.Validate(); err != nil {
					errs = append(errs, fmt.Sprintf("module %q: %v", m.ID, err))
				}
			}
		}
	}
	if len(c.order) != len(c.courses) {
		errs = append(errs, "duplicate course IDs")
	}

	qIDs := make(map[string]bool)
	for _, q := range c.pool {
		if qIDs[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate assessment question ID: %q", q.ID))
		}
		qIDs[q.ID] = true
		if err := q.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if _, err := assessment.SelectQuestions(c.pool, assessment.DefaultRequirements(), nil); err != nil {
		errs = append(errs, err.Error())
	}

	for _, co := range c.companies {
		if err := co.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(c.levels) == 0 {
		errs = append(errs, "no experience levels defined")
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Course returns a fresh copy of a course with no progress attached.
func (c *Catalog) Course(_ context.Context, courseID string) (*progression.Course, error) {
	cs, ok := c.courses[courseID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", progression.ErrCourseNotFound, courseID)
	}
	course := &progression.Course{ID: cs.ID, Title: cs.Title}
	for _, m := range cs.Modules {
		course.Modules = append(course.Modules, &progression.Module{
			ID:            m.ID,
			Title:         m.Title,
			OrderIndex:    m.Order,
			EstimatedTime: c.durations[m.ID],
			Summary:       m.Summary,
			VideoURL:      m.VideoURL,
			Questions:     append([]quiz.Question(nil), m.Questions...),
		})
	}
	return course, nil
}

// Courses lists all courses in catalog order.
func (c *Catalog) Courses() []CourseInfo {
	out := make([]CourseInfo, 0, len(c.order))
	for _, id := range c.order {
		cs := c.courses[id]
		info := CourseInfo{ID: cs.ID, Title: cs.Title, Modules: len(cs.Modules)}
		for _, m := range cs.Modules {
			info.Total += c.durations[m.ID]
		}
		out = append(out, info)
	}
	return out
}

// Pool returns the assessment question pool.
func (c *Catalog) Pool(context.Context) ([]assessment.Question, error) {
	return append([]assessment.Question(nil), c.pool...), nil
}

// Company looks up a company profile by name, ignoring case.
func (c *Catalog) Company(name string) (assessment.CompanyProfile, bool) {
	name = strings.TrimSpace(name)
	for _, co := range c.companies {
		if strings.EqualFold(co.Name, name) {
			return co, true
		}
	}
	return assessment.CompanyProfile{}, false
}

// Role looks up a role by name, ignoring case.
func (c *Catalog) Role(name string) (assessment.Role, bool) {
	name = strings.TrimSpace(name)
	for _, r := range c.roles {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return assessment.Role{}, false
}

// Level looks up an experience level by id or label, ignoring case.
func (c *Catalog) Level(id string) (assessment.Level, bool) {
	id = strings.TrimSpace(id)
	for _, l := range c.levels {
		if strings.EqualFold(l.ID, id) || strings.EqualFold(l.Label, id) {
			return l, true
		}
	}
	return assessment.Level{}, false
}

// Roles returns role names, sorted.
func (c *Catalog) Roles() []string {
	out := make([]string, 0, len(c.roles))
	for _, r := range c.roles {
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out
}

// Companies returns company names in catalog order.
func (c *Catalog) Companies() []string {
	out := make([]string, 0, len(c.companies))
	for _, co := range c.companies {
		out = append(out, co.Name)
	}
	return out
}

// Levels returns the experience levels in catalog order.
func (c *Catalog) Levels() []assessment.Level {
	return append([]assessment.Level(nil), c.levels...)
}

var (
	_ progression.ContentStore = (*Catalog)(nil)
	_ assessment.Catalog       = (*Catalog)(nil)
)
