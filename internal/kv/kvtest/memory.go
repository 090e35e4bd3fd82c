// Package kvtest provides an in-memory fiber.Storage with failure injection
// for tests.
package kvtest

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Memory is a map backed fiber.Storage. Expiry durations are recorded but
// not enforced.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	exp  map[string]time.Duration
	err  error

	// getErrs are returned by the next Get calls, one per call.
	getErrs []error
}

var _ fiber.Storage = (*Memory)(nil)

// New returns an empty Memory storage.
func New() *Memory {
	return &Memory{
		data: make(map[string][]byte),
		exp:  make(map[string]time.Duration),
	}
}

// Fail makes every following call return err. Pass nil to recover.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

// FailGet makes the next Get return err once. Calls queue up.
func (m *Memory) FailGet(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getErrs = append(m.getErrs, err)
}

// Put stores a raw value without going through Set, e.g. to plant corrupt data.
func (m *Memory) Put(key string, val []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), val...)
}

// Has reports whether key is stored.
func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.data[key]

	return ok
}

// TTL returns the expiry passed with the last Set of key.
func (m *Memory) TTL(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.exp[key]
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.getErrs) > 0 {
		err := m.getErrs[0]
		m.getErrs = m.getErrs[1:]

		return nil, err
	}

	if m.err != nil {
		return nil, m.err
	}

	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}

	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(key string, val []byte, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.data[key] = append([]byte(nil), val...)
	m.exp[key] = exp

	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	delete(m.data, key)
	delete(m.exp, key)

	return nil
}

func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte)
	m.exp = make(map[string]time.Duration)

	return nil
}

func (m *Memory) Close() error { return nil }
