package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const flowKeyPrefix = "bapti_auth_flow:"

// flow is a pending federated login.
type flow struct {
	Nonce     string    `json:"nonce"`
	ReturnURL string    `json:"returnUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// flowStore keeps pending flows in key-value storage so a callback can land
// on any instance. Each state can be taken once.
type flowStore struct {
	storage fiber.Storage
	timeout time.Duration
}

func (s flowStore) put(state string, f flow) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode flow: %w", err)
	}

	if err = s.storage.Set(flowKeyPrefix+state, data, s.timeout); err != nil {
		return fmt.Errorf("store flow: %w", err)
	}

	return nil
}

// take returns and removes the flow for state. Unknown, corrupt and
// expired flows report false.
func (s flowStore) take(state string, now time.Time) (flow, bool) {
	if state == "" {
		return flow{}, false
	}

	key := flowKeyPrefix + state

	data, err := s.storage.Get(key)
	if err != nil {
		log.Error().Err(err).Msg("failed to read login flow")

		return flow{}, false
	}

	if len(data) == 0 {
		return flow{}, false
	}

	if err = s.storage.Delete(key); err != nil {
		log.Warn().Err(err).Msg("failed to remove login flow")
	}

	var f flow
	if err = json.Unmarshal(data, &f); err != nil {
		log.Warn().Err(err).Msg("discarding corrupt login flow")

		return flow{}, false
	}

	if s.timeout > 0 && !now.Before(f.CreatedAt.Add(s.timeout)) {
		return flow{}, false
	}

	return f, true
}

// GenerateStateToken generates a random token for CSRF protection and nonces.
func GenerateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err //nolint:wrapcheck
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
