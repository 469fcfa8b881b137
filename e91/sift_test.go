package e91

import (
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestSift(t *testing.T) {
	tcs := []struct {
		name         string
		m            []Pair
		alice, bob   []Basis
		ekey         []Pair
		enonEntangle int
	}{
		{
			name:         "compatible bases at 0 and 3",
			m:            []Pair{{1, 1}, {0, 1}, {1, 0}, {0, 0}},
			alice:        []Basis{0, 0, 1, 2},
			bob:          []Basis{0, 2, 1, 2},
			ekey:         []Pair{{1, 1}, {0, 0}},
			enonEntangle: 2,
		}, {
			name:         "anti-correlated key",
			m:            []Pair{{1, 0}, {0, 1}, {1, 1}},
			alice:        []Basis{2, 0, 1},
			bob:          []Basis{2, 0, 1},
			ekey:         []Pair{{1, 0}, {0, 1}},
			enonEntangle: 0,
		}, {
			name:  "nothing compatible",
			m:     []Pair{{1, 0}, {0, 1}},
			alice: []Basis{1, 0},
			bob:   []Basis{1, 2},
		}, {
			name: "empty",
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			r := Sift(tc.m, tc.alice, tc.bob)
			if !reflect.DeepEqual(r.Key, tc.ekey) {
				t.Errorf("Sift(...).Key == %v, want %v", r.Key, tc.ekey)
			}
			if r.NonEntangled != tc.enonEntangle {
				t.Errorf("Sift(...).NonEntangled == %d, want %d", r.NonEntangled, tc.enonEntangle)
			}
			if len(r.Key) > len(tc.m) {
				t.Errorf("sifted key longer than measurements: %d > %d", len(r.Key), len(tc.m))
			}
		})
	}
}

func TestSiftMatchesCompatibleCount(t *testing.T) {
	alice, bob := Bases(DefaultAliceSeed, 500), Bases(DefaultBobSeed, 500)
	m := make([]Pair, 500)
	want := 0
	for i := range m {
		m[i] = Pair{A: uint8(i % 2), B: uint8(i / 2 % 2)}
		if alice[i] == bob[i] && (alice[i] == 0 || alice[i] == 2) {
			want++
		}
	}
	if got := len(Sift(m, alice, bob).Key); got != want {
		t.Errorf("sifted key length == %d, want %d", got, want)
	}
}

func TestSiftSummary(t *testing.T) {
	r := SiftResult{Key: []Pair{{1, 1}, {0, 0}, {1, 0}}, NonEntangled: 2}
	want := "Sifted key length: 3, Non-entangled bits: 2"
	if got := r.Summary(); got != want {
		t.Errorf("Summary() == %q, want %q", got, want)
	}
}

func TestSiftBits(t *testing.T) {
	r := SiftResult{Key: []Pair{{1, 0}, {0, 1}, {1, 1}, {0, 0}}, NonEntangled: 2}
	if got, want := r.AliceBits().String(), "1010"; got != want {
		t.Errorf("AliceBits() == %s, want %s", got, want)
	}
	if got, want := r.BobBits().String(), "1001"; got != want {
		t.Errorf("BobBits() == %s, want %s", got, want)
	}
	if got, want := r.QBER(), 0.5; got != want {
		t.Errorf("QBER() == %v, want %v", got, want)
	}
	if got := (SiftResult{}).QBER(); got != 0 {
		t.Errorf("empty QBER() == %v, want 0", got)
	}
}

func TestSiftLengthMismatch(t *testing.T) {
	r := Sift([]Pair{{1, 1}, {0, 0}}, []Basis{0}, []Basis{0, 0})
	if !reflect.DeepEqual(r.Key, []Pair{{1, 1}}) || r.NonEntangled != 1 {
		t.Errorf("Sift == %+v, want key [{1 1}] with 1 non-entangled", r)
	}
	if _, err := Trials([]Basis{0}, []Basis{0, 0}, nil); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Trials == %v, want %v", err, ErrLengthMismatch)
	}
}
