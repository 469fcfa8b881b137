// simulate.go runs one E91 key distribution experiment on the state-vector
// simulator and prints the bases, the sifted key summary, and the CHSH verdict.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/alan-christopher/e91/e91"
	"github.com/alan-christopher/e91/e91/circuit"
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/markkurossi/tabulate"
	flag "github.com/spf13/pflag"
	xrand "golang.org/x/exp/rand"
	"google.golang.org/protobuf/encoding/protojson"
)

var (
	trials     = flag.Int("trials", e91.DefaultTrials, "The number of entangled pairs to distribute.")
	aliceSeed  = flag.Int64("alice-seed", e91.DefaultAliceSeed, "Seed for Alice's basis choices.")
	bobSeed    = flag.Int64("bob-seed", e91.DefaultBobSeed, "Seed for Bob's basis choices.")
	eve        = flag.Bool("eve", true, "Whether Eve intercepts a quarter of Bob's qubits.")
	eveSeed    = flag.Uint64("eve-seed", 0, "Seed for choosing Eve's trials. Zero seeds from the clock.")
	simSeed    = flag.Uint64("sim-seed", 0, "Seed for the simulator's measurement outcomes. Zero seeds from the clock.")
	workers    = flag.Int("workers", 1, "The number of trials to simulate concurrently.")
	breakdown  = flag.Bool("breakdown", false, "Print a table of the individual CHSH terms.")
	asJSON     = flag.Bool("json", false, "Print the report as JSON instead of text.")
	transcript = flag.String("transcript", "", "If set, write a length-prefixed record of every trial to this file.")
	qasm       = flag.Bool("qasm", false, "Print the OpenQASM circuit of the first trial and exit.")
	verbosity  = flag.IntP("verbosity", "v", 0, "Log verbosity: 1 for per-phase detail, 2 for per-trial detail.")
)

func main() {
	flag.Parse()
	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))
	if err := run(context.Background(), os.Stdout, logger); err != nil {
		logger.Error(err, "simulation failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, logger logr.Logger) (err error) {
	if *qasm {
		alice, bob := e91.Bases(*aliceSeed, 1), e91.Bases(*bobSeed, 1)
		t := e91.Trial{Alice: alice[0], Bob: bob[0]}
		_, err := io.WriteString(w, t.Circuit().QASM())
		return err
	}

	opts := e91.ExperimentOpts{
		Trials:    *trials,
		AliceSeed: *aliceSeed,
		BobSeed:   *bobSeed,
		Eavesdrop: *eve,
		Simulator: circuit.NewStateVector(seedOrClock(*simSeed)),
		Workers:   *workers,
		Log:       logger,
	}
	if *eve {
		opts.EveRand = xrand.NewSource(seedOrClock(*eveSeed))
	}
	if *transcript != "" {
		f, ferr := os.Create(*transcript)
		if ferr != nil {
			return errors.Wrap(ferr, "creating transcript")
		}
		defer closeInto(f, &err)
		opts.Observer = e91.NewTranscriptWriter(f).Write
	}

	exp, err := e91.NewExperiment(opts)
	if err != nil {
		return err
	}
	r, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	if *asJSON {
		s, err := r.ToProto()
		if err != nil {
			return errors.Wrap(err, "encoding report")
		}
		b, err := protojson.MarshalOptions{Multiline: true}.Marshal(s)
		if err != nil {
			return errors.Wrap(err, "marshalling report")
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	if err := r.WriteText(w); err != nil {
		return err
	}
	if *breakdown {
		writeBreakdown(w, r.Terms)
	}
	return nil
}

// closeInto closes c, reporting its error through err unless err already
// holds an earlier failure.
func closeInto(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = errors.Wrap(cerr, "closing transcript")
	}
}

func seedOrClock(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return uint64(time.Now().UnixNano())
}

func writeBreakdown(w io.Writer, terms []e91.Term) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Alice").SetAlign(tabulate.MR)
	tab.Header("Bob").SetAlign(tabulate.MR)
	tab.Header("Sign").SetAlign(tabulate.MC)
	tab.Header("E").SetAlign(tabulate.MR)
	tab.Header("Samples").SetAlign(tabulate.MR)
	for _, t := range terms {
		sign := "+"
		if t.Sign < 0 {
			sign = "-"
		}
		row := tab.Row()
		row.Column(strconv.Itoa(int(t.A)))
		row.Column(strconv.Itoa(int(t.B)))
		row.Column(sign)
		row.Column(strconv.FormatFloat(t.Value, 'f', 4, 64))
		row.Column(strconv.Itoa(t.Samples))
	}
	tab.Print(w)
}
