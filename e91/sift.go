package e91

import (
	"fmt"

	"github.com/alan-christopher/e91/e91/bitmap"
)

// A SiftResult is the key retained after the parties compare bases.
type SiftResult struct {
	// Key holds the outcome pairs of trials where both parties chose basis 0
	// or both chose basis 2, in trial order.
	Key []Pair

	// NonEntangled counts retained pairs whose bits are equal. The singlet
	// yields opposite bits in a shared basis, so every equal pair is an
	// error, whether from noise or interception.
	NonEntangled int
}

// Sift keeps the outcomes of trials measured in a compatible basis pair. When
// the slices differ in length only the first min(len) trials are considered;
// callers wanting that reported should validate the bases with Trials first.
func Sift(measurements []Pair, alice, bob []Basis) SiftResult {
	var r SiftResult
	for i := range measurements {
		if i >= len(alice) || i >= len(bob) {
			break
		}
		if !compatible(alice[i], bob[i]) {
			continue
		}
		m := measurements[i]
		r.Key = append(r.Key, m)
		if m.A == m.B {
			r.NonEntangled++
		}
	}
	return r
}

func compatible(a, b Basis) bool {
	return a == b && (a == 0 || a == 2)
}

// Summary describes the key length and error count in one line.
func (r SiftResult) Summary() string {
	return fmt.Sprintf("Sifted key length: %d, Non-entangled bits: %d", len(r.Key), r.NonEntangled)
}

// AliceBits returns Alice's half of the sifted key.
func (r SiftResult) AliceBits() bitmap.Dense {
	var d bitmap.Dense
	for _, p := range r.Key {
		d.AppendBit(p.A == 1)
	}
	return d
}

// BobBits returns Bob's half of the sifted key, with each bit inverted so that
// it agrees with Alice's wherever the pair was anti-correlated.
func (r SiftResult) BobBits() bitmap.Dense {
	var d bitmap.Dense
	for _, p := range r.Key {
		d.AppendBit(p.B == 0)
	}
	return d
}

// QBER returns the fraction of sifted bits on which Alice and Bob disagree
// after Bob's inversion, or 0 for an empty key.
func (r SiftResult) QBER() float64 {
	if len(r.Key) == 0 {
		return 0
	}
	errs := bitmap.CountOnes(bitmap.XOr(r.AliceBits(), r.BobBits()))
	return float64(errs) / float64(len(r.Key))
}
