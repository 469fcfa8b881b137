package circuit

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"
)

// QASM renders c as an OpenQASM 2.0 program. Mid-circuit measurements write
// to the same classical bit as the final measurement of that qubit, which
// overwrites them.
func (c Circuit) QASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", c.Qubits)
	fmt.Fprintf(&sb, "creg c[%d];\n", c.Qubits)
	for _, g := range c.Gates {
		switch g.Op {
		case OpCNOT:
			fmt.Fprintf(&sb, "cx q[%d],q[%d];\n", g.Wires[0], g.Wires[1])
		case OpRZ:
			fmt.Fprintf(&sb, "rz(%s) q[%d];\n", strconv.FormatFloat(g.Theta, 'g', -1, 64), g.Wires[0])
		case OpMeasure:
			fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", g.Wires[0], g.Wires[0])
		default:
			fmt.Fprintf(&sb, "%v q[%d];\n", g.Op, g.Wires[0])
		}
	}
	for i := 0; i < c.Qubits; i++ {
		fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", i, i)
	}
	return sb.String()
}

// Digest returns the SHA3-256 hash of c's QASM rendering. Two circuits share
// a digest iff they apply the same gates with the same parameters.
func (c Circuit) Digest() [32]byte {
	return sha3.Sum256([]byte(c.QASM()))
}
