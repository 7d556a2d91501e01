package support

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// idSource issues time-ordered ULIDs for ephemeral entries and
// transcripts.
type idSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newIDSource() *idSource {
	return &idSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (s *idSource) New(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(at), s.entropy)
	if err != nil {
		// Monotonic entropy overflows only within a single millisecond;
		// fall back to fresh entropy.
		return ulid.MustNew(ulid.Timestamp(at), rand.Reader).String()
	}
	return id.String()
}
