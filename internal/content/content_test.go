package content_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bapti-church/bapti-web/internal/content"
	"github.com/bapti-church/bapti-web/internal/db/dbtest"
	"github.com/bapti-church/bapti-web/internal/docstore"
)

func newStore(t *testing.T, opts ...docstore.Option) *content.Store {
	t.Helper()

	return content.New(docstore.NewGormStore(dbtest.Open(t), opts...),
		content.WithClock(func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }))
}

func TestNormalizeLanguage(t *testing.T) {
	for in, want := range map[string]string{"hu": "hu", "en-GB": "en", " EN ": "en", "hu-HU": "hu"} {
		got, err := content.NormalizeLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := content.NormalizeLanguage("not a tag")
	require.ErrorIs(t, err, content.ErrInvalidLanguage)
}

func TestNews(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	older, err := s.AddNews(ctx, content.News{Title: "Old", Content: "x", Date: "2026-01-01", Language: "hu"})
	require.NoError(t, err)

	_, err = s.AddNews(ctx, content.News{Title: "New", Content: "y", Date: "2026-02-01", Language: "hu-HU"})
	require.NoError(t, err)

	_, err = s.AddNews(ctx, content.News{Title: "English", Content: "z", Date: "2026-02-02", Language: "en"})
	require.NoError(t, err)

	news, err := s.ListNews(ctx, "hu")
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "New", news[0].Title)
	assert.Equal(t, "Old", news[1].Title)
	assert.Equal(t, older, news[1].ID)

	all, err := s.ListNews(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.UpdateNews(ctx, older, content.News{Title: "Older", Content: "x", Date: "2026-01-01", Language: "hu"}))

	news, err = s.ListNews(ctx, "hu")
	require.NoError(t, err)
	assert.Equal(t, "Older", news[1].Title)

	require.NoError(t, s.DeleteNews(ctx, older))
	require.ErrorIs(t, s.DeleteNews(ctx, older), content.ErrNotFound)
	require.ErrorIs(t, s.UpdateNews(ctx, older, content.News{Title: "a", Content: "b", Date: "2026-01-01", Language: "hu"}), content.ErrNotFound)

	_, err = s.ListNews(ctx, "???")
	require.ErrorIs(t, err, content.ErrInvalidLanguage)
}

func TestNewsValidation(t *testing.T) {
	s := newStore(t)

	_, err := s.AddNews(context.Background(), content.News{Title: "t", Date: "01/02/2026", Language: "hu"})

	var verr *content.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Tag
	}

	assert.Equal(t, map[string]string{"Content": "required", "Date": "datetime"}, fields)
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.AddEvent(ctx, content.Event{
		Title: "Easter", Description: "service", Date: "2026-04-05", Time: "10:00", Language: "hu",
	})
	require.NoError(t, err)

	_, err = s.AddEvent(ctx, content.Event{
		Title: "Choir", Description: "rehearsal", Date: "2026-03-10", Time: "18:00", Location: "Hall", Language: "hu",
		ImageURL: "https://bapti.example/choir.jpg",
	})
	require.NoError(t, err)

	events, err := s.ListEvents(ctx, "hu")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Choir", events[0].Title)
	assert.Equal(t, "https://bapti.example/choir.jpg", events[0].ImageURL)
	assert.Equal(t, content.DefaultLocation, events[1].Location)

	_, err = s.AddEvent(ctx, content.Event{
		Title: "x", Description: "y", Date: "2026-03-10", Time: "1", Language: "hu", ImageURL: "not a url",
	})

	var verr *content.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ImageURL", verr.Fields[0].Field)

	require.NoError(t, s.DeleteEvent(ctx, events[1].ID))

	events, err = s.ListEvents(ctx, "hu")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestMessages(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id, err := s.Submit(ctx, content.Message{Name: " Anna ", Email: "anna@example.org", Subject: "Hi", Message: "Hello"})
	require.NoError(t, err)

	msgs, err := s.Messages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, "Anna", msgs[0].Name)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), msgs[0].Timestamp)

	_, err = s.Submit(ctx, content.Message{Name: "B", Email: "nope", Subject: "s", Message: "m"})

	var verr *content.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email", verr.Fields[0].Field)
}

func TestReadOnlyStore(t *testing.T) {
	s := newStore(t, docstore.ReadOnly())

	_, err := s.Submit(context.Background(), content.Message{Name: "B", Email: "b@example.org", Subject: "s", Message: "m"})
	require.ErrorIs(t, err, docstore.ErrPermissionDenied)
}
