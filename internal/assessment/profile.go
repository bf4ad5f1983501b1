package assessment

import (
	"fmt"
	"strings"
)

// DefaultBias is the difficulty bias of companies not found in the catalog.
const DefaultBias = 1.0

// CompanyProfile describes what a target company emphasises.
type CompanyProfile struct {
	Name string `yaml:"name"`

	// Weights is per-section emphasis. Reported alongside section scores;
	// it does not change selection or the overall score.
	Weights map[Section]float64 `yaml:"weights"`

	// DifficultyBias scales the alignment score. Must be > 0.
	DifficultyBias float64 `yaml:"difficulty_bias"`

	Style string `yaml:"style"`
	Tone  string `yaml:"tone"`

	// Custom is set when the company was not found in the catalog.
	Custom bool `yaml:"-"`
}

// CustomCompany returns a neutral profile for a free-text company name.
func CustomCompany(name string) CompanyProfile {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "General"
	}
	return CompanyProfile{
		Name:           name,
		DifficultyBias: DefaultBias,
		Style:          "General problem solving",
		Tone:           "Neutral",
		Custom:         true,
	}
}

// Validate checks the bias and weight sections.
func (c CompanyProfile) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("company profile missing name")
	}
	if c.DifficultyBias <= 0 {
		return fmt.Errorf("company %q: difficulty bias must be > 0, got %v", c.Name, c.DifficultyBias)
	}
	for sec, w := range c.Weights {
		if _, err := ParseSection(string(sec)); err != nil {
			return fmt.Errorf("company %q: %w", c.Name, err)
		}
		if w < 0 {
			return fmt.Errorf("company %q: negative weight for %s", c.Name, sec)
		}
	}
	return nil
}

// Role maps a job role to the skills it exercises.
type Role struct {
	Name      string   `yaml:"name"`
	Skills    []string `yaml:"skills"`
	SubSkills []string `yaml:"sub_skills"`
}

// Tags returns the role's skills and sub-skills, lowercased.
func (r *Role) Tags() map[string]bool {
	if r == nil {
		return nil
	}
	tags := make(map[string]bool, len(r.Skills)+len(r.SubSkills))
	for _, s := range r.Skills {
		tags[strings.ToLower(s)] = true
	}
	for _, s := range r.SubSkills {
		tags[strings.ToLower(s)] = true
	}
	return tags
}

// Level is an experience level a learner can pick.
type Level struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Years string `yaml:"years"`
}
