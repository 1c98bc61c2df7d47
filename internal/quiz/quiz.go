package quiz

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"essayons/internal/apperr"
)

//go:embed banks/*.yaml
var bankFS embed.FS

var ErrUnknownQuiz = errors.New("unknown quiz")

type Kind string

const (
	// KindStyle ranks categories against each other; blanks count as zero.
	KindStyle Kind = "style"
	// KindReadiness needs every answer and grades each category.
	KindReadiness Kind = "readiness"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Category struct {
	Key       string   `yaml:"key" json:"key"`
	Summary   string   `yaml:"summary" json:"summary,omitempty"`
	Strengths []string `yaml:"strengths" json:"strengths,omitempty"`
}

type Question struct {
	ID       string `yaml:"id" json:"id"`
	Category string `yaml:"category" json:"category"`
	Text     string `yaml:"text" json:"text"`
}

// Band maps an average of at least Min to a feedback line.
type Band struct {
	Level string  `yaml:"level" json:"level"`
	Min   float64 `yaml:"min" json:"min"`
	Text  string  `yaml:"text" json:"text"`
}

// Bank is one questionnaire as loaded from YAML.
type Bank struct {
	Name         string     `yaml:"name" json:"name"`
	Kind         Kind       `yaml:"kind" json:"kind"`
	Title        string     `yaml:"title" json:"title"`
	Instructions string     `yaml:"instructions" json:"instructions"`
	Categories   []Category `yaml:"categories" json:"categories"`
	Questions    []Question `yaml:"questions" json:"questions"`
	Feedback     []Band     `yaml:"feedback" json:"feedback,omitempty"`
}

func (b *Bank) validate() error {
	if b.Name == "" {
		return errors.New("name is required")
	}
	if b.Kind != KindStyle && b.Kind != KindReadiness {
		return fmt.Errorf("unknown kind %q", b.Kind)
	}
	cats := make(map[string]int, len(b.Categories))
	for _, c := range b.Categories {
		cats[c.Key] = 0
	}
	seen := make(map[string]bool, len(b.Questions))
	for _, q := range b.Questions {
		if seen[q.ID] {
			return fmt.Errorf("duplicate question %q", q.ID)
		}
		seen[q.ID] = true
		if _, ok := cats[q.Category]; !ok {
			return fmt.Errorf("question %q has unknown category %q", q.ID, q.Category)
		}
		cats[q.Category]++
	}
	for k, n := range cats {
		if n == 0 {
			return fmt.Errorf("category %q has no questions", k)
		}
	}
	if b.Kind == KindStyle && len(b.Categories) < 2 {
		return errors.New("style quizzes need at least two categories")
	}
	if b.Kind == KindReadiness && len(b.Feedback) == 0 {
		return errors.New("readiness quizzes need feedback bands")
	}
	sort.SliceStable(b.Feedback, func(i, j int) bool { return b.Feedback[i].Min > b.Feedback[j].Min })
	return nil
}

func (b *Bank) band(avg float64) Band {
	for _, f := range b.Feedback {
		if avg >= f.Min {
			return f
		}
	}
	return b.Feedback[len(b.Feedback)-1]
}

// Registry holds the loaded banks by name.
type Registry struct {
	banks map[string]*Bank
	names []string
}

// Load reads the banks embedded in the binary.
func Load() (*Registry, error) {
	sub, err := fs.Sub(bankFS, "banks")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS reads every *.yaml file at the root of fsys.
func LoadFS(fsys fs.FS) (*Registry, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	r := &Registry{banks: make(map[string]*Bank)}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		var b Bank
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f, err)
		}
		if err := b.validate(); err != nil {
			return nil, fmt.Errorf("invalid quiz %s: %w", path.Base(f), err)
		}
		if _, dup := r.banks[b.Name]; dup {
			return nil, fmt.Errorf("quiz %q defined twice", b.Name)
		}
		r.banks[b.Name] = &b
		r.names = append(r.names, b.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Get(name string) (*Bank, error) {
	b, ok := r.banks[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuiz, name)
	}
	return b, nil
}

// Score grades answers (question id to rating) against the named bank.
func (r *Registry) Score(name string, answers map[string]int) (*Result, error) {
	b, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return b.Score(answers)
}

func (b *Bank) checkAnswers(answers map[string]int, requireAll bool) error {
	var ve apperr.ValidationError
	known := make(map[string]bool, len(b.Questions))
	for _, q := range b.Questions {
		known[q.ID] = true
		v, ok := answers[q.ID]
		if (!ok || v == 0) && requireAll {
			ve.Add(q.ID, "is required")
		}
	}
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		v := answers[id]
		switch {
		case !known[id]:
			ve.Add(id, "is not a question in this quiz")
		case v != 0 && (v < MinRating || v > MaxRating):
			ve.Add(id, fmt.Sprintf("must be between %d and %d", MinRating, MaxRating))
		}
	}
	return ve.Err()
}
