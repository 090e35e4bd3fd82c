package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bapti-church/bapti-web/internal/docstore"
)

// Message is a contact form submission.
type Message struct {
	ID        string    `json:"id"        mapstructure:"-"`
	Name      string    `json:"name"      mapstructure:"name"      validate:"required,max=200"`
	Email     string    `json:"email"     mapstructure:"email"     validate:"required,email,max=255"`
	Subject   string    `json:"subject"   mapstructure:"subject"   validate:"required,max=300"`
	Message   string    `json:"message"   mapstructure:"message"   validate:"required,max=10000"`
	Timestamp time.Time `json:"timestamp" mapstructure:"timestamp"`
}

// Submit validates m, stamps it and stores it.
func (s *Store) Submit(ctx context.Context, m Message) (string, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)

	if err := s.check(&m); err != nil {
		return "", err
	}

	id, err := s.docs.Add(ctx, MessagesCollection, docstore.Record{
		"name":      m.Name,
		"email":     m.Email,
		"subject":   m.Subject,
		"message":   m.Message,
		"timestamp": docstore.Millis(s.now().UTC()),
	})
	if err != nil {
		return "", fmt.Errorf("submit message: %w", err)
	}

	return id, nil
}

// Messages returns all contact messages, newest first.
func (s *Store) Messages(ctx context.Context) ([]Message, error) {
	docs, err := s.docs.List(ctx, MessagesCollection, docstore.OrderBy("timestamp", true))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	out := make([]Message, 0, len(docs))

	for _, doc := range docs {
		var m Message
		if err := docstore.Decode(doc.Data, &m); err != nil {
			return nil, fmt.Errorf("decode message %s: %w", doc.ID, err)
		}

		m.ID = doc.ID
		out = append(out, m)
	}

	return out, nil
}
