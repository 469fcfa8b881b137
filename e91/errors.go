package e91

import "github.com/cockroachdb/errors"

// Configuration errors, returned by NewExperiment.
var (
	// ErrInvalidTrials indicates a non-positive trial count.
	ErrInvalidTrials = errors.New("e91: trial count must be positive")

	// ErrNoSimulator indicates that no circuit simulator was configured.
	ErrNoSimulator = errors.New("e91: must provide Simulator")

	// ErrNoEveRand indicates eavesdropping was requested without a source
	// for Eve's index selection.
	ErrNoEveRand = errors.New("e91: must provide EveRand when Eavesdrop is set")

	// ErrInvalidWorkers indicates a negative worker count.
	ErrInvalidWorkers = errors.New("e91: worker count must not be negative")
)

// Input errors, returned while assembling or measuring trials.
var (
	// ErrLengthMismatch indicates per-trial sequences of different lengths.
	ErrLengthMismatch = errors.New("e91: per-trial sequences differ in length")

	// ErrInvalidBasis indicates a basis choice outside {0, 1, 2}.
	ErrInvalidBasis = errors.New("e91: basis choice out of range")

	// ErrInvalidEveIndex indicates an eavesdrop index outside [0, n).
	ErrInvalidEveIndex = errors.New("e91: eavesdrop index out of range")

	// ErrBadOutcome indicates a simulator result that is not one bit per
	// qubit.
	ErrBadOutcome = errors.New("e91: malformed measurement outcome")
)
