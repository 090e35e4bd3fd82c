package content

import (
	"context"
	"fmt"

	"github.com/bapti-church/bapti-web/internal/docstore"
)

// DefaultLocation is used for events created without one.
const DefaultLocation = "Új Élet Baptista Gyülekezet Gyöngyös"

// Event is one entry of the event calendar.
type Event struct {
	ID          string `json:"id"                 mapstructure:"-"`
	Title       string `json:"title"              mapstructure:"title"       validate:"required,max=200"`
	Description string `json:"description"        mapstructure:"description" validate:"required"`
	Date        string `json:"date"               mapstructure:"date"        validate:"required,datetime=2006-01-02"`
	Time        string `json:"time"               mapstructure:"time"        validate:"required"`
	Location    string `json:"location"           mapstructure:"location"`
	Language    string `json:"language"           mapstructure:"language"    validate:"required"`
	ImageURL    string `json:"imageUrl,omitempty" mapstructure:"imageUrl"    validate:"omitempty,url"`
}

func (e *Event) record() docstore.Record {
	rec := docstore.Record{
		"title":       e.Title,
		"description": e.Description,
		"date":        e.Date,
		"time":        e.Time,
		"location":    e.Location,
		"language":    e.Language,
	}

	if e.ImageURL != "" {
		rec["imageUrl"] = e.ImageURL
	}

	return rec
}

// ListEvents returns the events of lang by date, the earliest first.
func (s *Store) ListEvents(ctx context.Context, lang string) ([]Event, error) {
	docs, err := s.list(ctx, EventsCollection, lang, false)
	if err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(docs))

	for _, doc := range docs {
		var e Event
		if err := docstore.Decode(doc.Data, &e); err != nil {
			return nil, fmt.Errorf("decode event %s: %w", doc.ID, err)
		}

		e.ID = doc.ID
		out = append(out, e)
	}

	return out, nil
}

// AddEvent validates e and stores it under a new id.
func (s *Store) AddEvent(ctx context.Context, e Event) (string, error) {
	if err := s.prepareEvent(&e); err != nil {
		return "", err
	}

	id, err := s.docs.Add(ctx, EventsCollection, e.record())
	if err != nil {
		return "", fmt.Errorf("add event: %w", err)
	}

	return id, nil
}

// UpdateEvent replaces the fields of an existing event.
func (s *Store) UpdateEvent(ctx context.Context, id string, e Event) error {
	if err := s.prepareEvent(&e); err != nil {
		return err
	}

	return s.update(ctx, EventsCollection, id, e.record())
}

// DeleteEvent removes an event.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.remove(ctx, EventsCollection, id)
}

func (s *Store) prepareEvent(e *Event) error {
	if e.Location == "" {
		e.Location = DefaultLocation
	}

	if err := s.check(e); err != nil {
		return err
	}

	lang, err := NormalizeLanguage(e.Language)
	if err != nil {
		return err
	}

	e.Language = lang

	return nil
}
