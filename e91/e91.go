// Package e91 simulates the E91 entanglement-based quantum key distribution
// protocol: Alice and Bob measure halves of singlet pairs in randomly chosen
// bases, keep the outcomes of compatible bases as a sifted key, and use the
// CHSH inequality over the remaining settings to detect an eavesdropper.
package e91

import (
	"context"

	"github.com/alan-christopher/e91/e91/circuit"
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/attribute"
	xrand "golang.org/x/exp/rand"
)

const (
	// DefaultTrials is the number of entangled pairs distributed when the
	// caller has no preference.
	DefaultTrials = 100
	// DefaultAliceSeed and DefaultBobSeed seed the parties' basis choices in
	// the reference run.
	DefaultAliceSeed int64 = 13
	DefaultBobSeed   int64 = 15
)

// An ExperimentOpts packages together the arguments necessary to construct a
// new Experiment. Trials and Simulator have no reasonable defaults; leaving
// them zero makes NewExperiment return an error.
type ExperimentOpts struct {
	// Trials is the number of entangled pairs to distribute. Must be
	// positive.
	Trials int

	// AliceSeed and BobSeed seed each party's basis choices. Zero is a
	// valid seed.
	AliceSeed, BobSeed int64

	// Eavesdrop enables Eve, who measures Bob's qubit on Trials/4 randomly
	// chosen trials. EveRand is the source for choosing those trials and must
	// be non-nil iff Eavesdrop is set. It is deliberately separate from the
	// basis seeds: callers wanting reproducible runs must seed it too.
	Eavesdrop bool
	EveRand   xrand.Source

	// Simulator evaluates trial circuits. Must be non-nil.
	Simulator circuit.Simulator

	// Workers bounds the number of trials evaluated concurrently. Zero
	// means one.
	Workers int

	// Observer, if non-nil, receives a record of every trial in trial order
	// once measurement completes. An Observer error fails the run.
	Observer func(TrialRecord) error

	// Log receives progress messages. The zero value discards them.
	Log logr.Logger
}

// An Experiment is a configured E91 run.
type Experiment struct {
	trials    int
	aliceSeed int64
	bobSeed   int64
	eveRand   xrand.Source
	sim       circuit.Simulator
	workers   int
	observer  func(TrialRecord) error
	log       logr.Logger
}

// NewExperiment returns a new Experiment, configured in accordance with opts,
// or an error if the options are nonsensical.
func NewExperiment(opts ExperimentOpts) (*Experiment, error) {
	if opts.Trials <= 0 {
		return nil, errors.Wrapf(ErrInvalidTrials, "got %d", opts.Trials)
	}
	if opts.Simulator == nil {
		return nil, ErrNoSimulator
	}
	if opts.Eavesdrop && opts.EveRand == nil {
		return nil, ErrNoEveRand
	}
	if opts.Workers < 0 {
		return nil, errors.Wrapf(ErrInvalidWorkers, "got %d", opts.Workers)
	}
	workers := opts.Workers
	if workers == 0 {
		workers = 1
	}
	e := &Experiment{
		trials:    opts.Trials,
		aliceSeed: opts.AliceSeed,
		bobSeed:   opts.BobSeed,
		sim:       opts.Simulator,
		workers:   workers,
		observer:  opts.Observer,
		log:       opts.Log.WithName("e91"),
	}
	if opts.Eavesdrop {
		e.eveRand = opts.EveRand
	}
	return e, nil
}

// Run performs one full simulation: basis selection, Eve's index selection,
// measurement, sifting, and the CHSH test.
func (e *Experiment) Run(ctx context.Context) (r Report, err error) {
	ctx, end := startSpan(ctx, SpanRun,
		attribute.Int("e91.trials", e.trials),
		attribute.Bool("e91.eavesdrop", e.eveRand != nil),
		attribute.Int("e91.workers", e.workers))
	defer func() { end(err) }()

	r.Alice = Bases(e.aliceSeed, e.trials)
	r.Bob = Bases(e.bobSeed, e.trials)
	if e.eveRand != nil {
		r.Eve = EveIndices(e.eveRand, e.trials)
	}
	e.log.V(1).Info("chose bases", "trials", e.trials, "intercepted", len(r.Eve))

	trials, err := Trials(r.Alice, r.Bob, r.Eve)
	if err != nil {
		return Report{}, err
	}
	r.Measurements, err = e.measure(ctx, trials)
	if err != nil {
		return Report{}, err
	}
	if e.observer != nil {
		for i, t := range trials {
			if err = e.observer(newTrialRecord(t, r.Measurements[i])); err != nil {
				return Report{}, errors.Wrapf(err, "observing trial %d", i)
			}
		}
	}

	_, endSift := startSpan(ctx, SpanSift)
	r.Sift = Sift(r.Measurements, r.Alice, r.Bob)
	endSift(nil)
	e.log.V(1).Info("sifted key", "length", len(r.Sift.Key), "nonEntangled", r.Sift.NonEntangled, "qber", r.Sift.QBER())

	_, endCHSH := startSpan(ctx, SpanCHSH)
	r.Terms = CHSHTerms(r.Measurements, r.Alice, r.Bob)
	r.S = SumTerms(r.Terms)
	r.Verdict = Classify(r.S)
	endCHSH(nil)
	e.log.V(1).Info("run complete", "chsh", r.S, "verdict", r.Verdict.String())
	return r, nil
}

func (e *Experiment) measure(ctx context.Context, trials []Trial) (m []Pair, err error) {
	ctx, end := startSpan(ctx, SpanMeasure, attribute.Int("e91.workers", e.workers))
	defer func() { end(err) }()
	return measure(ctx, e.sim, trials, e.workers, e.log)
}
