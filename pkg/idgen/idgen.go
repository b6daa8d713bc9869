// Package idgen produces record identifiers that stay unique regardless of
// how many records have been deleted.
package idgen

import (
	"crypto/rand"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out new identifiers.
type Generator interface {
	NextID() string
}

// Sequence is a monotonically increasing decimal counter. It never reuses a
// value, even after the record holding it is removed.
type Sequence struct {
	mu   sync.Mutex
	last uint64
}

// NewSequence returns a Sequence whose first NextID is start+1.
func NewSequence(start uint64) *Sequence {
	return &Sequence{last: start}
}

// NextID returns the next decimal identifier.
func (s *Sequence) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last++
	return strconv.FormatUint(s.last, 10)
}

// Observe advances the counter past id when id is a decimal number larger than
// anything handed out so far. Non-numeric ids are ignored.
func (s *Sequence) Observe(id string) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n > s.last {
		s.last = n
	}
}

// ULID generates lexicographically sortable ULIDs from a monotonic entropy source.
type ULID struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewULID returns a ULID generator.
func NewULID() *ULID {
	return &ULID{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NextID returns a new ULID string.
func (g *ULID) NextID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now().UTC()), g.entropy).String()
}
