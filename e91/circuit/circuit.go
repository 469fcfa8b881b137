// Package circuit describes small quantum circuits as immutable gate lists and
// evaluates them on a Simulator.
//
// A Circuit is a pure description: building one has no side effects, and the
// same Circuit may be handed to any number of concurrent Simulator calls.
package circuit

import (
	"github.com/cockroachdb/errors"
)

// MaxQubits bounds the register size accepted by Validate. A state vector for
// n qubits holds 2^n amplitudes.
const MaxQubits = 16

var (
	// ErrInvalidWire indicates a gate addressing a qubit outside the register,
	// or a two-qubit gate addressing the same qubit twice.
	ErrInvalidWire = errors.New("circuit: invalid wire")

	// ErrTooManyQubits indicates a register larger than MaxQubits.
	ErrTooManyQubits = errors.New("circuit: too many qubits")

	// ErrUnknownOp indicates a gate with an Op this package does not know.
	ErrUnknownOp = errors.New("circuit: unknown op")
)

// An Op identifies a gate type.
type Op int

const (
	// OpX is the Pauli-X (bit flip) gate.
	OpX Op = iota + 1
	// OpH is the Hadamard gate.
	OpH
	// OpCNOT is the controlled-NOT gate; Wires is {control, target}.
	OpCNOT
	// OpRZ is a rotation about Z by Theta radians.
	OpRZ
	// OpMeasure is a projective mid-circuit measurement in the computational
	// basis. Its outcome is discarded but the state collapses.
	OpMeasure
)

// String returns the lower-case OpenQASM mnemonic for op.
func (op Op) String() string {
	switch op {
	case OpX:
		return "x"
	case OpH:
		return "h"
	case OpCNOT:
		return "cx"
	case OpRZ:
		return "rz"
	case OpMeasure:
		return "measure"
	default:
		return "unknown"
	}
}

func (op Op) arity() int {
	if op == OpCNOT {
		return 2
	}
	return 1
}

// A Gate is a single operation in a Circuit.
type Gate struct {
	Op    Op
	Wires []int
	// Theta is the rotation angle in radians. Only meaningful for OpRZ.
	Theta float64
}

// X returns a Pauli-X gate on wire w.
func X(w int) Gate { return Gate{Op: OpX, Wires: []int{w}} }

// H returns a Hadamard gate on wire w.
func H(w int) Gate { return Gate{Op: OpH, Wires: []int{w}} }

// CNOT returns a controlled-NOT gate with the given control and target.
func CNOT(control, target int) Gate {
	return Gate{Op: OpCNOT, Wires: []int{control, target}}
}

// RZ returns a Z rotation by theta radians on wire w.
func RZ(theta float64, w int) Gate { return Gate{Op: OpRZ, Wires: []int{w}, Theta: theta} }

// Measure returns a mid-circuit measurement of wire w.
func Measure(w int) Gate { return Gate{Op: OpMeasure, Wires: []int{w}} }

// A Circuit is an ordered gate list over a register of Qubits qubits. Every
// qubit is measured once after the last gate.
type Circuit struct {
	Qubits int
	Gates  []Gate
}

// New returns a circuit on the given number of qubits applying gates in order.
func New(qubits int, gates ...Gate) Circuit {
	return Circuit{Qubits: qubits, Gates: gates}
}

// Append returns a copy of c with gates added to the end. c is not modified.
func (c Circuit) Append(gates ...Gate) Circuit {
	out := make([]Gate, 0, len(c.Gates)+len(gates))
	out = append(out, c.Gates...)
	out = append(out, gates...)
	return Circuit{Qubits: c.Qubits, Gates: out}
}

// Validate checks the register size and that every gate addresses wires
// within the register.
func (c Circuit) Validate() error {
	if c.Qubits < 1 || c.Qubits > MaxQubits {
		return errors.Wrapf(ErrTooManyQubits, "register of %d qubits, want 1..%d", c.Qubits, MaxQubits)
	}
	for i, g := range c.Gates {
		if g.Op < OpX || g.Op > OpMeasure {
			return errors.Wrapf(ErrUnknownOp, "gate %d: op %d", i, int(g.Op))
		}
		if len(g.Wires) != g.Op.arity() {
			return errors.Wrapf(ErrInvalidWire, "gate %d (%v): %d wires, want %d", i, g.Op, len(g.Wires), g.Op.arity())
		}
		for _, w := range g.Wires {
			if w < 0 || w >= c.Qubits {
				return errors.Wrapf(ErrInvalidWire, "gate %d (%v): wire %d outside register of %d", i, g.Op, w, c.Qubits)
			}
		}
		if g.Op == OpCNOT && g.Wires[0] == g.Wires[1] {
			return errors.Wrapf(ErrInvalidWire, "gate %d (cx): control and target are both %d", i, g.Wires[0])
		}
	}
	return nil
}

// HasMidMeasure reports whether c contains any mid-circuit measurement.
func (c Circuit) HasMidMeasure() bool {
	for _, g := range c.Gates {
		if g.Op == OpMeasure {
			return true
		}
	}
	return false
}
