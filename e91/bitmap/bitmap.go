// Package bitmap provides a densely-packed array of bits, used to hold one
// party's view of a sifted key.
package bitmap

import (
	"math/bits"
	"strings"

	"github.com/cockroachdb/errors"
)

const byteSize = 8

// A Dense is a bitmap where every bit is explicitly represented. Bits are
// stored little-endian within each byte.
type Dense struct {
	bits []byte
	len  int
}

// NewDense returns a new dense bitmap whose contents are a view of data, and
// whose length is bitLen. If bitLen is longer than data, then trailing zeros
// are added. If bitLen is negative, then it is inferred from data.
func NewDense(data []byte, bitLen int) Dense {
	if bitLen < 0 {
		bitLen = len(data) * byteSize
	}
	for len(data) < BytesFor(bitLen) {
		data = append(data, 0)
	}
	return Dense{bits: data, len: bitLen}
}

// FromString converts a string of '1's and '0's to a Dense. Spaces are
// ignored.
func FromString(s string) (Dense, error) {
	d := Dense{}
	for _, c := range s {
		switch c {
		case '1':
			d.AppendBit(true)
		case '0':
			d.AppendBit(false)
		case ' ':
			continue
		default:
			return Dense{}, errors.Newf("invalid bitmap string rep: %q", s)
		}
	}
	return d, nil
}

// Get returns the i-th bit in d. Bits past the end read as zero.
func (d Dense) Get(i int) bool {
	if i < 0 || i >= d.len {
		return false
	}
	return d.bits[i/byteSize]&(1<<(i%byteSize)) != 0
}

// Size returns the number of bits in d.
func (d Dense) Size() int {
	return d.len
}

// Data returns a view of the bytes underlying d. Modifying the returned
// slice modifies d.
func (d Dense) Data() []byte {
	return d.bits
}

// AppendBit adds a single bit to the end of d.
func (d *Dense) AppendBit(bit bool) {
	i, pos := d.len/byteSize, d.len%byteSize
	if pos == 0 && i >= len(d.bits) {
		d.bits = append(d.bits, 0)
	}
	if bit {
		d.bits[i] |= 1 << pos
	} else {
		d.bits[i] &^= 1 << pos
	}
	d.len++
}

// String renders d as a string of '0's and '1's, grouped in bytes.
func (d Dense) String() string {
	var sb strings.Builder
	for i := 0; i < d.len; i++ {
		if i > 0 && i%byteSize == 0 {
			sb.WriteByte(' ')
		}
		if d.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// XOr returns the bitwise XOR of two bitmaps. The shorter operand is treated
// as zero-padded.
func XOr(a, b Dense) Dense {
	short, long := a, b
	if b.len < a.len {
		short, long = b, a
	}
	ns, nl := BytesFor(short.len), BytesFor(long.len)
	r := Dense{
		bits: make([]byte, nl),
		len:  long.len,
	}
	copy(r.bits, long.bits[:nl])
	for i := 0; i < ns; i++ {
		b := short.bits[i]
		if i == ns-1 && short.len%byteSize != 0 {
			b &= 1<<(short.len%byteSize) - 1
		}
		r.bits[i] ^= b
	}
	return r
}

// CountOnes returns the total number of bits set in d.
func CountOnes(d Dense) int {
	var sum int
	n := BytesFor(d.len)
	for i := 0; i < n; i++ {
		b := d.bits[i]
		if i == n-1 && d.len%byteSize != 0 {
			b &= 1<<(d.len%byteSize) - 1
		}
		sum += bits.OnesCount8(b)
	}
	return sum
}

// Equal returns true iff a and b have the same length and contain the same
// bits.
func Equal(a, b Dense) bool {
	return a.len == b.len && CountOnes(XOr(a, b)) == 0
}

// BytesFor returns the number of bytes necessary to hold the provided number of
// bits.
func BytesFor(bits int) int {
	return (bits + byteSize - 1) / byteSize
}
