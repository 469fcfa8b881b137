package e91

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// A Report packages together everything a run produced.
type Report struct {
	Alice, Bob []Basis
	// Eve holds the intercepted trial indices; nil when Eve was absent.
	Eve          []int
	Measurements []Pair
	Sift         SiftResult
	Terms        []Term
	S            float64
	Verdict      Verdict
}

// WriteText writes the report in the line-oriented console format: both
// basis sequences, Eve's indices, then the results.
func (r Report) WriteText(w io.Writer) error {
	eve := "none"
	if r.Eve != nil {
		strs := make([]string, len(r.Eve))
		for i, q := range r.Eve {
			strs[i] = strconv.Itoa(q)
		}
		eve = "[" + strings.Join(strs, ", ") + "]"
	}
	_, err := fmt.Fprintf(w,
		"Alice's bases: %v\nBob's bases: %v\nEve's bits: %s\n\nResults:\n%s\nCHSH value: %.4f\n%v\n",
		r.Alice, r.Bob, eve, r.Sift.Summary(), r.S, r.Verdict)
	return err
}

// ToProto converts r into a Struct suitable for JSON export.
func (r Report) ToProto() (*structpb.Struct, error) {
	terms := make([]interface{}, 0, len(r.Terms))
	for _, t := range r.Terms {
		terms = append(terms, map[string]interface{}{
			"alice":   int(t.A),
			"bob":     int(t.B),
			"sign":    t.Sign,
			"value":   t.Value,
			"samples": t.Samples,
		})
	}
	measurements := make([]interface{}, 0, len(r.Measurements))
	for _, m := range r.Measurements {
		measurements = append(measurements, []interface{}{int(m.A), int(m.B)})
	}
	eve := make([]interface{}, 0, len(r.Eve))
	for _, q := range r.Eve {
		eve = append(eve, q)
	}
	return structpb.NewStruct(map[string]interface{}{
		"alice_bases":    basesList(r.Alice),
		"bob_bases":      basesList(r.Bob),
		"eavesdropping":  r.Eve != nil,
		"eve_indices":    eve,
		"measurements":   measurements,
		"sifted_key_len": len(r.Sift.Key),
		"non_entangled":  r.Sift.NonEntangled,
		"qber":           r.Sift.QBER(),
		"alice_key":      r.Sift.AliceBits().String(),
		"bob_key":        r.Sift.BobBits().String(),
		"chsh_terms":     terms,
		"chsh":           r.S,
		"verdict":        r.Verdict.String(),
	})
}

func basesList(bases []Basis) []interface{} {
	out := make([]interface{}, len(bases))
	for i, b := range bases {
		out[i] = int(b)
	}
	return out
}
