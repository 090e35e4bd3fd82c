package profile

import (
	"hash/fnv"
	"sync"
)

const lockStripeCount = 256

// stripes serialises work per uid. Two uids may share a stripe, which only
// costs concurrency.
type stripes struct {
	locks [lockStripeCount]sync.Mutex
}

func (s *stripes) lock(uid string) func() {
	m := &s.locks[stripeIndex(uid)]
	m.Lock()

	return m.Unlock
}

func stripeIndex(key string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(key))

	return int(hash.Sum32() % uint32(lockStripeCount))
}
