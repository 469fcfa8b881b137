package e91

import (
	"context"

	"github.com/alan-christopher/e91/e91/circuit"
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// A Pair is the single-shot outcome of one trial: Alice's bit and Bob's bit.
type Pair struct {
	A, B uint8
}

// Measure evaluates the circuit of every trial on sim, one after another, and
// returns the outcomes in trial order. Any simulator error ends the run.
func Measure(ctx context.Context, sim circuit.Simulator, alice, bob []Basis, eve []int) ([]Pair, error) {
	trials, err := Trials(alice, bob, eve)
	if err != nil {
		return nil, err
	}
	return measure(ctx, sim, trials, 1, logr.Discard())
}

// measure evaluates trials on up to workers goroutines. Each outcome is stored
// at its trial's index, so the result is in trial order regardless of
// completion order. The first failure cancels the trials not yet started.
func measure(ctx context.Context, sim circuit.Simulator, trials []Trial, workers int, log logr.Logger) ([]Pair, error) {
	out := make([]Pair, len(trials))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, t := range trials {
		t := t // per-iteration copy (go.mod targets go1.21 loop semantics)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			bits, err := sim.Run(gctx, t.Circuit())
			if err != nil {
				return errors.Wrapf(err, "measuring trial %d", t.Index)
			}
			if len(bits) != 2 || bits[0] > 1 || bits[1] > 1 {
				return errors.Wrapf(ErrBadOutcome, "trial %d: %v", t.Index, bits)
			}
			out[t.Index] = Pair{A: bits[0], B: bits[1]}
			log.V(2).Info("measured trial", "index", t.Index,
				"alice", t.Alice, "bob", t.Bob, "eavesdropped", t.Eavesdropped,
				"outcome", out[t.Index])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Trials skipped after the parent ctx was cancelled leave their slots
	// unfilled without failing the group.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
