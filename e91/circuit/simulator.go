package circuit

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrScriptExhausted is returned by a Scripted simulator asked for more shots
// than it was given.
var ErrScriptExhausted = errors.New("circuit: scripted outcomes exhausted")

// A Simulator evaluates circuits. Implementations must be safe for concurrent
// use.
type Simulator interface {
	// Run evaluates c once and returns one measured bit (0 or 1) per qubit,
	// indexed by wire.
	Run(ctx context.Context, c Circuit) ([]uint8, error)
}

// SimulatorFunc adapts an ordinary function to the Simulator interface.
type SimulatorFunc func(ctx context.Context, c Circuit) ([]uint8, error)

// Run implements Simulator.
func (f SimulatorFunc) Run(ctx context.Context, c Circuit) ([]uint8, error) {
	return f(ctx, c)
}

// A Scripted simulator ignores circuit semantics and hands out pre-recorded
// outcomes in call order. It records every circuit it was asked to run.
type Scripted struct {
	mu       sync.Mutex
	outcomes [][]uint8
	next     int
	circuits []Circuit
}

// NewScripted returns a Scripted simulator that will return outcomes in order.
func NewScripted(outcomes ...[]uint8) *Scripted {
	return &Scripted{outcomes: outcomes}
}

// Run implements Simulator.
func (s *Scripted) Run(ctx context.Context, c Circuit) ([]uint8, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.circuits = append(s.circuits, c)
	if s.next >= len(s.outcomes) {
		return nil, errors.Wrapf(ErrScriptExhausted, "shot %d of %d", s.next+1, len(s.outcomes))
	}
	out := s.outcomes[s.next]
	s.next++
	return append([]uint8(nil), out...), nil
}

// Circuits returns the circuits run so far, in call order.
func (s *Scripted) Circuits() []Circuit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Circuit(nil), s.circuits...)
}
