// Package content keeps the public content of the site: news, events and
// the messages sent through the contact form.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/bapti-church/bapti-web/internal/docstore"
)

// Collections.
const (
	NewsCollection     = "news"
	EventsCollection   = "events"
	MessagesCollection = "contact-messages"
)

var (
	// ErrNotFound is returned for an unknown item id.
	ErrNotFound = errors.New("content not found")
	// ErrInvalidLanguage is returned when a language tag can not be parsed.
	ErrInvalidLanguage = errors.New("invalid language")
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value any    `json:"value,omitempty"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field+" ("+f.Tag+")")
	}

	return "invalid content: " + strings.Join(names, ", ")
}

// Store reads and writes content items.
type Store struct {
	docs     docstore.Store
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a content store over docs.
func New(docs docstore.Store, opts ...Option) *Store {
	s := &Store{
		docs:     docs,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NormalizeLanguage parses tag and returns its base language, "en-GB"
// becomes "en".
func NormalizeLanguage(tag string) (string, error) {
	t, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, tag)
	}

	base, _ := t.Base()

	return base.String(), nil
}

func (s *Store) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag(), Value: fe.Value()})
	}

	return out
}

func (s *Store) list(ctx context.Context, collection, lang string, desc bool) ([]docstore.Document, error) {
	opts := []docstore.ListOption{docstore.OrderBy("date", desc)}

	if lang != "" {
		base, err := NormalizeLanguage(lang)
		if err != nil {
			return nil, err
		}

		opts = append(opts, docstore.Where("language", base))
	}

	docs, err := s.docs.List(ctx, collection, opts...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	return docs, nil
}

func (s *Store) update(ctx context.Context, collection, id string, rec docstore.Record) error {
	err := s.docs.Update(ctx, collection, id, rec)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}

	return nil
}

func (s *Store) remove(ctx context.Context, collection, id string) error {
	err := s.docs.Delete(ctx, collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}

	return nil
}
