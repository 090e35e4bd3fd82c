package profile

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/account"
)

const (
	// HistoryKey is the storage key of the login history.
	HistoryKey = "bapti_login_history"

	// DefaultHistoryMax is used when no positive maximum is configured.
	DefaultHistoryMax = 20
)

// History is the login history: a ring buffer of login events persisted as
// one JSON array. Storage failures are logged and never returned.
//
// The history is per instance: appends are serialised by an in-process
// mutex only, so instances sharing a kv backend may overwrite each other's
// latest events.
type History struct {
	mu      sync.Mutex
	storage fiber.Storage
	max     int
}

// NewHistory returns a History keeping at most max events.
func NewHistory(storage fiber.Storage, max int) *History {
	if max <= 0 {
		max = DefaultHistoryMax
	}

	return &History{storage: storage, max: max}
}

// Max returns the capacity.
func (h *History) Max() int {
	return h.max
}

// Append records ev, evicting the oldest events beyond the capacity.
func (h *History) Append(ev account.LoginEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	events, err := h.load()
	if err != nil {
		log.Error().Err(err).Str("email", ev.Email).Msg("login history unreadable, event not recorded")

		return
	}

	events = append(events, ev)
	if over := len(events) - h.max; over > 0 {
		events = events[over:]
	}

	data, err := json.Marshal(events)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode login history")

		return
	}

	if err = h.storage.Set(HistoryKey, data, 0); err != nil {
		log.Error().Err(err).Str("email", ev.Email).Msg("failed to store login history")
	}
}

// Entries returns all events, oldest first.
func (h *History) Entries() []account.LoginEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	events, err := h.load()
	if err != nil {
		log.Error().Err(err).Msg("failed to read login history")
	}

	return events
}

// For returns the events of one email, oldest first. Emails compare
// case-insensitively.
func (h *History) For(email string) []account.LoginEvent {
	var out []account.LoginEvent

	for _, ev := range h.Entries() {
		if strings.EqualFold(ev.Email, email) {
			out = append(out, ev)
		}
	}

	return out
}

// load returns the stored events. A corrupt array reads as empty; only a
// failed storage read is an error.
func (h *History) load() ([]account.LoginEvent, error) {
	data, err := h.storage.Get(HistoryKey)
	if err != nil {
		return nil, fmt.Errorf("read login history: %w", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var events []account.LoginEvent
	if err = json.Unmarshal(data, &events); err != nil {
		log.Warn().Err(err).Msg("discarding corrupt login history")

		return nil, nil
	}

	return events, nil
}
