// Package jobs loads job profiles that steer question focus and grading.
package jobs

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/hh-interviewer/internal/evaluator"
	"github.com/spigell/hh-interviewer/internal/interview"

	"gopkg.in/yaml.v3"
)

var ErrUnknownJob = errors.New("unknown job profile")

// Profile describes the role a candidate interviews for.
type Profile struct {
	ID             string                              `yaml:"id"`
	Title          string                              `yaml:"title"`
	Level          string                              `yaml:"level"`
	Seniority      string                              `yaml:"seniority"`
	MustHaveSkills []string                            `yaml:"must_have_skills"`
	Description    string                              `yaml:"description"`
	Rubrics        map[string]evaluator.RubricOverride `yaml:"rubrics"`
}

// Catalog is the parsed jobs file.
type Catalog struct {
	Jobs []Profile `yaml:"jobs"`
}

// Load reads and validates a YAML jobs file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file %q: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse jobs: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	seen := map[string]struct{}{}
	for i, p := range c.Jobs {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("job #%d has no id", i+1)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate job id %q", id)
		}
		seen[id] = struct{}{}
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("job %q has no title", id)
		}
		for topic := range p.Rubrics {
			if !interview.TopicKind(topic).IsValid() {
				return fmt.Errorf("job %q overrides rubric for unknown topic %q", id, topic)
			}
		}
	}
	return nil
}

// Get returns the profile with the given id. An empty id picks the only profile when the
// catalog has exactly one.
func (c *Catalog) Get(id string) (*Profile, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, id)
	}
	id = strings.TrimSpace(id)
	if id == "" && len(c.Jobs) == 1 {
		return &c.Jobs[0], nil
	}
	for i := range c.Jobs {
		if c.Jobs[i].ID == id {
			return &c.Jobs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownJob, id)
}

func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.Jobs))
	for i, p := range c.Jobs {
		ids[i] = p.ID
	}
	return ids
}

// Context returns the part of the profile stored with the interview.
func (p *Profile) Context() interview.JobContext {
	seniority := interview.ParseSeniority(p.Level)
	if p.Seniority != "" {
		seniority = interview.ParseSeniority(p.Seniority)
	}
	return interview.JobContext{
		ID:          p.ID,
		Title:       p.Title,
		Level:       p.Level,
		Seniority:   seniority,
		Skills:      append([]string(nil), p.MustHaveSkills...),
		Description: strings.TrimSpace(p.Description),
	}
}

// NextSkill returns the first must-have skill not yet covered. Once every skill was probed
// it cycles from the start.
func NextSkill(skills, covered []string) string {
	if len(skills) == 0 {
		return ""
	}
	done := make(map[string]struct{}, len(covered))
	for _, s := range covered {
		done[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, s := range skills {
		if _, ok := done[strings.ToLower(strings.TrimSpace(s))]; !ok {
			return s
		}
	}
	return skills[len(covered)%len(skills)]
}
