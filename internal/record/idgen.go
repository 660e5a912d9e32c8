package record

import (
	"math/rand"
	"sync"
	"time"
)

// IDGenerator produces record ids. It is injected into the resolver,
// diff engine, and the manual add operations so tests can assert on
// generated ids deterministically.
//
// Contract: no two ids returned by the same generator are ever equal.
type IDGenerator interface {
	NextID() int64
}

// ClockIDGenerator derives ids from the wall clock plus a random
// offset, bumping monotonically when the clock would repeat.
type ClockIDGenerator struct {
	mu   sync.Mutex
	last int64
}

// NextID returns a fresh id. Millisecond timestamp scaled by 1000
// leaves room for the random offset without overlapping the next tick.
func (g *ClockIDGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := time.Now().UnixMilli()*1000 + rand.Int63n(1000)
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// SequenceIDGenerator hands out consecutive ids starting at Start.
// Test use only.
type SequenceIDGenerator struct {
	mu   sync.Mutex
	next int64
}

// NewSequence returns a SequenceIDGenerator whose first id is start.
func NewSequence(start int64) *SequenceIDGenerator {
	return &SequenceIDGenerator{next: start}
}

func (g *SequenceIDGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.next
	g.next++
	return id
}
