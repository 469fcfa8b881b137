package e91

import (
	"math"
	"math/rand"
	"sort"

	"github.com/alan-christopher/e91/e91/circuit"
	"github.com/cockroachdb/errors"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Basis is a party's measurement setting for one trial, in {0, 1, 2}.
type Basis uint8

// NumBases is the number of measurement settings available to each party.
const NumBases = 3

// EveFraction is the divisor applied to the trial count to get the number of
// intercepted qubits.
const EveFraction = 4

// Measurement angles, in radians, of the Z rotation applied before the final
// Hadamard for each basis. Basis 0 applies no rotation. The two sets are
// offset so that settings (0,2), (0,1), (1,2) and (1,1) maximally violate the
// CHSH inequality.
var (
	aliceAngles = [NumBases]float64{0, math.Pi / 2, math.Pi / 4}
	bobAngles   = [NumBases]float64{0, -math.Pi / 4, math.Pi / 4}
)

// Bases returns n uniformly random basis choices drawn from a source seeded
// with seed. The same seed always yields the same sequence. A negative n is
// treated as zero.
func Bases(seed int64, n int) []Basis {
	n = max(n, 0)
	r := rand.New(rand.NewSource(seed))
	bases := make([]Basis, n)
	for i := range bases {
		bases[i] = Basis(r.Intn(NumBases))
	}
	return bases
}

// EveIndices returns n/EveFraction distinct trial indices in [0, n), sampled
// without replacement from src and sorted ascending. A negative n is treated
// as zero.
func EveIndices(src xrand.Source, n int) []int {
	idxs := make([]int, max(n, 0)/EveFraction)
	if len(idxs) == 0 {
		return idxs
	}
	sampleuv.WithoutReplacement(idxs, n, src)
	sort.Ints(idxs)
	return idxs
}

// A Trial is one entangled pair and the choices made about it.
type Trial struct {
	Index        int
	Alice, Bob   Basis
	Eavesdropped bool
}

// Trials zips the per-party basis sequences and Eve's index set into trials.
// A nil or empty eve means no trial is intercepted.
func Trials(alice, bob []Basis, eve []int) ([]Trial, error) {
	if len(alice) != len(bob) {
		return nil, errors.Wrapf(ErrLengthMismatch, "alice has %d bases, bob has %d", len(alice), len(bob))
	}
	trials := make([]Trial, len(alice))
	for i := range trials {
		if alice[i] >= NumBases || bob[i] >= NumBases {
			return nil, errors.Wrapf(ErrInvalidBasis, "trial %d: (%d, %d)", i, alice[i], bob[i])
		}
		trials[i] = Trial{Index: i, Alice: alice[i], Bob: bob[i]}
	}
	for _, q := range eve {
		if q < 0 || q >= len(trials) {
			return nil, errors.Wrapf(ErrInvalidEveIndex, "index %d, %d trials", q, len(trials))
		}
		trials[q].Eavesdropped = true
	}
	return trials, nil
}

// Circuit returns the two-qubit circuit evaluated for t: singlet preparation,
// Eve's interception of qubit 1 if any, then each party's basis rotation
// followed by a Hadamard. Qubit 0 is Alice's and qubit 1 is Bob's.
func (t Trial) Circuit() circuit.Circuit {
	gates := []circuit.Gate{
		circuit.X(0),
		circuit.X(1),
		circuit.H(0),
		circuit.CNOT(0, 1),
	}
	if t.Eavesdropped {
		gates = append(gates, circuit.Measure(1))
	}
	if t.Alice != 0 {
		gates = append(gates, circuit.RZ(aliceAngles[t.Alice], 0))
	}
	gates = append(gates, circuit.H(0))
	if t.Bob != 0 {
		gates = append(gates, circuit.RZ(bobAngles[t.Bob], 1))
	}
	gates = append(gates, circuit.H(1))
	return circuit.New(2, gates...)
}
