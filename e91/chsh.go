package e91

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ExpectedValue returns the correlation (N11 + N00 - N10 - N01) / N over the
// trials where Alice chose aSetting and Bob chose bSetting, or exactly 0 when
// no trial matches. Like Sift, it considers only the first min(len) trials
// when the slices differ in length.
func ExpectedValue(measurements []Pair, alice, bob []Basis, aSetting, bSetting Basis) float64 {
	e, _ := correlation(measurements, alice, bob, aSetting, bSetting)
	return e
}

// correlation maps each matching outcome to +1 when the bits agree and -1
// otherwise, and returns the mean along with the number of samples.
func correlation(measurements []Pair, alice, bob []Basis, aSetting, bSetting Basis) (float64, int) {
	var prods []float64
	for i, m := range measurements {
		if i >= len(alice) || i >= len(bob) {
			break
		}
		if alice[i] != aSetting || bob[i] != bSetting {
			continue
		}
		if m.A == m.B {
			prods = append(prods, 1)
		} else {
			prods = append(prods, -1)
		}
	}
	if len(prods) == 0 {
		return 0, 0
	}
	return stat.Mean(prods, nil), len(prods)
}

// A Term is one correlation in the CHSH sum.
type Term struct {
	A, B    Basis
	Sign    float64
	Value   float64
	Samples int
}

// chshSettings lists the (Alice, Bob) settings of the CHSH sum and the sign
// each contributes.
var chshSettings = [4]struct {
	a, b Basis
	sign float64
}{
	{0, 2, +1},
	{0, 1, +1},
	{1, 2, +1},
	{1, 1, -1},
}

// CHSHTerms returns the four correlations combined by CHSH.
func CHSHTerms(measurements []Pair, alice, bob []Basis) []Term {
	terms := make([]Term, 0, len(chshSettings))
	for _, s := range chshSettings {
		v, n := correlation(measurements, alice, bob, s.a, s.b)
		terms = append(terms, Term{A: s.a, B: s.b, Sign: s.sign, Value: v, Samples: n})
	}
	return terms
}

// CHSH returns |E(0,2) + E(0,1) + E(1,2) - E(1,1)|. Local hidden variable
// models bound it by 2; the singlet reaches 2√2.
func CHSH(measurements []Pair, alice, bob []Basis) float64 {
	return SumTerms(CHSHTerms(measurements, alice, bob))
}

// SumTerms returns the absolute value of the signed sum of terms.
func SumTerms(terms []Term) float64 {
	var s float64
	for _, t := range terms {
		s += t.Sign * t.Value
	}
	return math.Abs(s)
}

// A Verdict is the eavesdropping assessment derived from a CHSH value.
type Verdict int

const (
	// Detected means S is within the classical bound of 2.
	Detected Verdict = iota
	// Likely means 2 < S <= 2.5.
	Likely
	// Possible means 2.5 < S <= 2.8, which noise alone can explain.
	Possible
	// Undetected means S > 2.8, close to the quantum maximum.
	Undetected
)

// Classify maps S to a Verdict. Any S not above 2, NaN included, is Detected.
func Classify(s float64) Verdict {
	switch {
	case s > 2.8:
		return Undetected
	case s > 2.5:
		return Possible
	case s > 2.0:
		return Likely
	default:
		return Detected
	}
}

// String returns the message reported for v.
func (v Verdict) String() string {
	switch v {
	case Undetected:
		return "Eve undetected"
	case Possible:
		return "Possible eavesdropping (could be noise)"
	case Likely:
		return "Likely eavesdropping"
	default:
		return "Eve detected!"
	}
}
