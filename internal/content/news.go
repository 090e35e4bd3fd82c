package content

import (
	"context"
	"fmt"

	"github.com/bapti-church/bapti-web/internal/docstore"
)

// News is one news item. Date is a calendar day, YYYY-MM-DD.
type News struct {
	ID       string `json:"id"       mapstructure:"-"`
	Title    string `json:"title"    mapstructure:"title"    validate:"required,max=200"`
	Content  string `json:"content"  mapstructure:"content"  validate:"required"`
	Date     string `json:"date"     mapstructure:"date"     validate:"required,datetime=2006-01-02"`
	Language string `json:"language" mapstructure:"language" validate:"required"`
}

func (n *News) record() docstore.Record {
	return docstore.Record{
		"title":    n.Title,
		"content":  n.Content,
		"date":     n.Date,
		"language": n.Language,
	}
}

// ListNews returns the news of lang, newest first. An empty lang returns
// every language.
func (s *Store) ListNews(ctx context.Context, lang string) ([]News, error) {
	docs, err := s.list(ctx, NewsCollection, lang, true)
	if err != nil {
		return nil, err
	}

	out := make([]News, 0, len(docs))

	for _, doc := range docs {
		var n News
		if err := docstore.Decode(doc.Data, &n); err != nil {
			return nil, fmt.Errorf("decode news %s: %w", doc.ID, err)
		}

		n.ID = doc.ID
		out = append(out, n)
	}

	return out, nil
}

// AddNews validates n and stores it under a new id.
func (s *Store) AddNews(ctx context.Context, n News) (string, error) {
	if err := s.prepareNews(&n); err != nil {
		return "", err
	}

	id, err := s.docs.Add(ctx, NewsCollection, n.record())
	if err != nil {
		return "", fmt.Errorf("add news: %w", err)
	}

	return id, nil
}

// UpdateNews replaces the fields of an existing item.
func (s *Store) UpdateNews(ctx context.Context, id string, n News) error {
	if err := s.prepareNews(&n); err != nil {
		return err
	}

	return s.update(ctx, NewsCollection, id, n.record())
}

// DeleteNews removes an item.
func (s *Store) DeleteNews(ctx context.Context, id string) error {
	return s.remove(ctx, NewsCollection, id)
}

func (s *Store) prepareNews(n *News) error {
	if err := s.check(n); err != nil {
		return err
	}

	lang, err := NormalizeLanguage(n.Language)
	if err != nil {
		return err
	}

	n.Language = lang

	return nil
}
