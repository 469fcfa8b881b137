package circuit

import (
	"context"
	"math"
	"math/cmplx"

	"github.com/cockroachdb/errors"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrMidMeasure is returned by Probabilities for circuits whose outcome
// distribution depends on a mid-circuit measurement.
var ErrMidMeasure = errors.New("circuit: mid-circuit measurement has no single outcome distribution")

var (
	hadamard = mat.NewCDense(2, 2, []complex128{
		complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0),
		complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0),
	})
	pauliX = mat.NewCDense(2, 2, []complex128{
		0, 1,
		1, 0,
	})
)

func rz(theta float64) *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{
		cmplx.Exp(complex(0, -theta/2)), 0,
		0, cmplx.Exp(complex(0, theta/2)),
	})
}

// A StateVector simulates circuits exactly on a dense vector of 2^n complex
// amplitudes and samples measurements from it. Wire 0 is the most significant
// bit of the basis-state index.
//
// A StateVector is safe for concurrent use. Its random draws are serialized
// through a single locked source, so results are reproducible for a seed only
// when calls are made from one goroutine.
type StateVector struct {
	src *xrand.LockedSource
}

// NewStateVector returns a simulator drawing measurement randomness from a
// source seeded with seed.
func NewStateVector(seed uint64) *StateVector {
	src := &xrand.LockedSource{}
	src.Seed(seed)
	return &StateVector{src: src}
}

// Run implements Simulator.
func (s *StateVector) Run(ctx context.Context, c Circuit) ([]uint8, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	amps, err := s.evolve(c)
	if err != nil {
		return nil, err
	}
	idx := int(distuv.NewCategorical(probabilities(amps), s.src).Rand())
	out := make([]uint8, c.Qubits)
	for w := range out {
		out[w] = uint8(idx>>(c.Qubits-1-w)) & 1
	}
	return out, nil
}

// Probabilities returns the exact distribution over final measurement
// outcomes of c, indexed by basis state with wire 0 as the most significant
// bit. Circuits with mid-circuit measurements are rejected with ErrMidMeasure.
func (s *StateVector) Probabilities(c Circuit) ([]float64, error) {
	if c.HasMidMeasure() {
		return nil, ErrMidMeasure
	}
	amps, err := s.evolve(c)
	if err != nil {
		return nil, err
	}
	return probabilities(amps), nil
}

func (s *StateVector) evolve(c Circuit) ([]complex128, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	amps := make([]complex128, 1<<c.Qubits)
	amps[0] = 1
	for _, g := range c.Gates {
		switch g.Op {
		case OpX:
			apply1(amps, c.Qubits, g.Wires[0], pauliX)
		case OpH:
			apply1(amps, c.Qubits, g.Wires[0], hadamard)
		case OpRZ:
			apply1(amps, c.Qubits, g.Wires[0], rz(g.Theta))
		case OpCNOT:
			cnot(amps, c.Qubits, g.Wires[0], g.Wires[1])
		case OpMeasure:
			s.collapse(amps, c.Qubits, g.Wires[0])
		}
	}
	return amps, nil
}

// apply1 applies the 2x2 unitary u to wire w.
func apply1(amps []complex128, qubits, w int, u *mat.CDense) {
	mask := 1 << (qubits - 1 - w)
	u00, u01, u10, u11 := u.At(0, 0), u.At(0, 1), u.At(1, 0), u.At(1, 1)
	for i := range amps {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a0, a1 := amps[i], amps[j]
		amps[i] = u00*a0 + u01*a1
		amps[j] = u10*a0 + u11*a1
	}
}

func cnot(amps []complex128, qubits, control, target int) {
	cm, tm := 1<<(qubits-1-control), 1<<(qubits-1-target)
	for i := range amps {
		if i&cm != 0 && i&tm == 0 {
			amps[i], amps[i|tm] = amps[i|tm], amps[i]
		}
	}
}

// collapse measures wire w, zeroes the amplitudes inconsistent with the
// sampled outcome and renormalizes the rest.
func (s *StateVector) collapse(amps []complex128, qubits, w int) {
	mask := 1 << (qubits - 1 - w)
	var p1 float64
	for i, a := range amps {
		if i&mask != 0 {
			p1 += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	one := distuv.Bernoulli{P: math.Min(p1, 1), Src: s.src}.Rand() == 1
	for i := range amps {
		if (i&mask != 0) != one {
			amps[i] = 0
		}
	}
	norm := cmplxs.Norm(amps, 2)
	cmplxs.Scale(complex(1/norm, 0), amps)
}

func probabilities(amps []complex128) []float64 {
	p := make([]float64, len(amps))
	for i, a := range amps {
		p[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return p
}
