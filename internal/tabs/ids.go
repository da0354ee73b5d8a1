package tabs

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDPrefix starts every minted container id.
const IDPrefix = "tabs-"

// IDGenerator mints container ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator mints IDPrefix followed by a random UUID.
type UUIDGenerator struct{}

// NewID returns a fresh id.
func (UUIDGenerator) NewID() string {
	return IDPrefix + uuid.NewString()
}

// SequenceGenerator mints IDPrefix followed by an increasing counter.
// Output is deterministic, which suits tests and reproducible fixtures.
type SequenceGenerator struct {
	mu   sync.Mutex
	next int
}

// NewSequenceGenerator creates a generator whose first id ends in start.
func NewSequenceGenerator(start int) *SequenceGenerator {
	return &SequenceGenerator{next: start}
}

// NewID returns the next id in sequence.
func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s%d", IDPrefix, g.next)
	g.next++
	return id
}

// maxMintAttempts bounds retries when a generator returns ids in use.
const maxMintAttempts = 64

// mintID draws ids from gen until one is neither bound nor retired in reg
// and not rejected by taken.
func mintID(gen IDGenerator, reg Registry, taken func(string) bool) (string, error) {
	for i := 0; i < maxMintAttempts; i++ {
		id := gen.NewID()
		if id == "" || reg.Retired(id) {
			continue
		}
		if _, ok := reg.Resolve(id); ok {
			continue
		}
		if taken != nil && taken(id) {
			continue
		}
		return id, nil
	}
	return "", ErrIDExhausted
}
