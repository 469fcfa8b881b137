package circuit

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

const tolerance = 1e-12

func singlet() Circuit {
	return New(2, X(0), X(1), H(0), CNOT(0, 1))
}

func TestValidate(t *testing.T) {
	tcs := []struct {
		name string
		c    Circuit
		eerr error
	}{
		{"ok", singlet(), nil},
		{"empty register", New(0), ErrTooManyQubits},
		{"huge register", New(MaxQubits + 1), ErrTooManyQubits},
		{"wire out of range", New(2, H(2)), ErrInvalidWire},
		{"negative wire", New(2, X(-1)), ErrInvalidWire},
		{"cnot onto itself", New(2, CNOT(1, 1)), ErrInvalidWire},
		{"cnot arity", New(2, Gate{Op: OpCNOT, Wires: []int{0}}), ErrInvalidWire},
		{"unknown op", New(2, Gate{Op: Op(42), Wires: []int{0}}), ErrUnknownOp},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate()
			if tc.eerr == nil {
				if err != nil {
					t.Errorf("Validate() == %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.eerr) {
				t.Errorf("Validate() == %v, want %v", err, tc.eerr)
			}
		})
	}
}

func TestAppendDoesNotAlias(t *testing.T) {
	base := New(2, X(0))
	a := base.Append(H(0))
	b := base.Append(H(1))
	if a.Gates[1].Wires[0] != 0 || b.Gates[1].Wires[0] != 1 {
		t.Errorf("Append shares storage between derived circuits: %v, %v", a.Gates, b.Gates)
	}
	if len(base.Gates) != 1 {
		t.Errorf("Append modified its receiver: %v", base.Gates)
	}
}

func TestQASM(t *testing.T) {
	c := New(2, X(0), CNOT(0, 1), Measure(1), RZ(math.Pi/4, 0), H(1))
	want := strings.Join([]string{
		"OPENQASM 2.0;",
		`include "qelib1.inc";`,
		"qreg q[2];",
		"creg c[2];",
		"x q[0];",
		"cx q[0],q[1];",
		"measure q[1] -> c[1];",
		"rz(0.7853981633974483) q[0];",
		"h q[1];",
		"measure q[0] -> c[0];",
		"measure q[1] -> c[1];",
		"",
	}, "\n")
	if got := c.QASM(); got != want {
		t.Errorf("QASM() ==\n%s\nwant\n%s", got, want)
	}
}

func TestDigest(t *testing.T) {
	a := singlet().Append(RZ(math.Pi/4, 0))
	b := singlet().Append(RZ(math.Pi/4, 0))
	c := singlet().Append(RZ(-math.Pi/4, 0))
	if a.Digest() != b.Digest() {
		t.Errorf("equal circuits have different digests")
	}
	if a.Digest() == c.Digest() {
		t.Errorf("circuits with different angles share a digest")
	}
}

func TestScripted(t *testing.T) {
	s := NewScripted([]uint8{0, 1}, []uint8{1, 1})
	ctx := context.Background()
	for i, want := range [][]uint8{{0, 1}, {1, 1}} {
		got, err := s.Run(ctx, singlet())
		if err != nil {
			t.Fatalf("shot %d: %v", i, err)
		}
		if got[0] != want[0] || got[1] != want[1] {
			t.Errorf("shot %d: got %v, want %v", i, got, want)
		}
	}
	if _, err := s.Run(ctx, singlet()); !errors.Is(err, ErrScriptExhausted) {
		t.Errorf("third shot: got %v, want %v", err, ErrScriptExhausted)
	}
	if n := len(s.Circuits()); n != 3 {
		t.Errorf("recorded %d circuits, want 3", n)
	}
}

func TestSingletProbabilities(t *testing.T) {
	sv := NewStateVector(1)
	p, err := sv.Probabilities(singlet())
	if err != nil {
		t.Fatalf("Probabilities: %v", err)
	}
	// (|01> - |10>)/sqrt(2)
	want := []float64{0, 0.5, 0.5, 0}
	for i := range want {
		if math.Abs(p[i]-want[i]) > tolerance {
			t.Errorf("P(%02b) == %v, want %v", i, p[i], want[i])
		}
	}
}

func TestRotatedCorrelation(t *testing.T) {
	sv := NewStateVector(1)
	tcs := []struct {
		name   string
		ta, tb float64
		ecorr  float64
	}{
		{"aligned", 0, 0, -1},
		{"quarter turn", 0, math.Pi / 4, -1 / math.Sqrt2},
		{"opposed eighths", math.Pi / 2, -math.Pi / 4, 1 / math.Sqrt2},
		{"orthogonal", math.Pi / 2, 0, 0},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			c := singlet().Append(RZ(tc.ta, 0), H(0), RZ(tc.tb, 1), H(1))
			p, err := sv.Probabilities(c)
			if err != nil {
				t.Fatalf("Probabilities: %v", err)
			}
			corr := p[0b00] + p[0b11] - p[0b01] - p[0b10]
			if math.Abs(corr-tc.ecorr) > tolerance {
				t.Errorf("correlation == %v, want %v", corr, tc.ecorr)
			}
		})
	}
}

func TestProbabilitiesRejectsMidMeasure(t *testing.T) {
	sv := NewStateVector(1)
	if _, err := sv.Probabilities(singlet().Append(Measure(1))); !errors.Is(err, ErrMidMeasure) {
		t.Errorf("got %v, want %v", err, ErrMidMeasure)
	}
}

func TestRunAnticorrelated(t *testing.T) {
	sv := NewStateVector(7)
	c := singlet().Append(H(0), H(1))
	for i := 0; i < 200; i++ {
		out, err := sv.Run(context.Background(), c)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(out) != 2 || out[0] > 1 || out[1] > 1 {
			t.Fatalf("Run returned malformed outcome %v", out)
		}
		if out[0] == out[1] {
			t.Fatalf("shot %d: singlet measured in a shared basis gave equal bits %v", i, out)
		}
	}
}

func TestMidMeasureBreaksCorrelation(t *testing.T) {
	sv := NewStateVector(11)
	c := singlet().Append(Measure(1), H(0), H(1))
	equal := 0
	const shots = 2000
	for i := 0; i < shots; i++ {
		out, err := sv.Run(context.Background(), c)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if out[0] == out[1] {
			equal++
		}
	}
	// A collapsed pair measured in the X basis is uncorrelated: half the
	// shots agree. 2000 shots put 0.4..0.6 far outside any plausible tail.
	if f := float64(equal) / shots; f < 0.4 || f > 0.6 {
		t.Errorf("fraction of equal bits after interception == %v, want ~0.5", f)
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	c := singlet().Append(Measure(1), RZ(math.Pi/4, 0), H(0), H(1))
	a, b := NewStateVector(99), NewStateVector(99)
	for i := 0; i < 50; i++ {
		oa, err := a.Run(context.Background(), c)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		ob, err := b.Run(context.Background(), c)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if oa[0] != ob[0] || oa[1] != ob[1] {
			t.Fatalf("shot %d: same seed gave %v and %v", i, oa, ob)
		}
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStateVector(1).Run(ctx, singlet()); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want %v", err, context.Canceled)
	}
}
