package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"wellness-quiz/internal/domain"
)

// Catalog is the ordered, immutable list of questions. Order is step order.
type Catalog struct {
	questions []domain.Question
	index     map[string]int
}

// Loader fetches catalog definitions from a backing source.
type Loader interface {
	LoadCatalog(ctx context.Context) (*Catalog, error)
}

var validate = validator.New()

// New validates the definitions and builds a catalog from them.
func New(questions []domain.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, errors.New("catalog has no questions")
	}
	c := &Catalog{
		questions: make([]domain.Question, len(questions)),
		index:     make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		if err := validate.Struct(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		if _, dup := c.index[q.Key]; dup {
			return nil, fmt.Errorf("question %d: duplicate key %q", i, q.Key)
		}
		switch q.Kind {
		case domain.KindNumeric:
			if len(q.Options) > 0 {
				return nil, fmt.Errorf("question %q: numeric question cannot have options", q.Key)
			}
		default:
			if len(q.Options) == 0 {
				return nil, fmt.Errorf("question %q: %s question needs options", q.Key, q.Kind)
			}
		}
		q.Options = append([]string(nil), q.Options...)
		c.questions[i] = q
		c.index[q.Key] = i
	}
	return c, nil
}

// MustNew is New for package-level catalogs; it panics on invalid definitions.
func MustNew(questions []domain.Question) *Catalog {
	c, err := New(questions)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.questions)
}

// QuestionAt returns the question for step i.
func (c *Catalog) QuestionAt(i int) (domain.Question, error) {
	if i < 0 || i >= len(c.questions) {
		return domain.Question{}, fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, i)
	}
	q := c.questions[i]
	q.Options = append([]string(nil), q.Options...)
	return q, nil
}

// IndexOfKey returns the step index of key.
func (c *Catalog) IndexOfKey(key string) (int, bool) {
	i, ok := c.index[key]
	return i, ok
}

// Questions returns a copy of every definition in order.
func (c *Catalog) Questions() []domain.Question {
	out := make([]domain.Question, len(c.questions))
	for i := range c.questions {
		out[i], _ = c.QuestionAt(i)
	}
	return out
}
