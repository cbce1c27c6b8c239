// Package types defines the small value types shared by the parser, ir, and
// codegen packages: line addresses, stack frame bookkeeping, the surface
// term/condition grammar, and identifiers.
package types

import "fmt"

// Address is a line number in the generated program. It is the same number
// used as the target of a `jump`.
type Address int

// AddressDelta is the distance between two addresses, or the number of
// instructions an operation emits.
type AddressDelta int

func (a Address) String() string      { return fmt.Sprintf("%d", int(a)) }
func (d AddressDelta) String() string { return fmt.Sprintf("%d", int(d)) }

// Add returns a + d, panicking on overflow or if the result would be negative.
func (a Address) Add(d AddressDelta) Address {
	r := int(a) + int(d)
	if r < 0 {
		panic("address arithmetic underflowed")
	}
	return Address(r)
}

// Sub returns a - d, panicking if the result would be negative.
func (a Address) Sub(d AddressDelta) Address {
	r := int(a) - int(d)
	if r < 0 {
		panic("address arithmetic underflowed")
	}
	return Address(r)
}

// Diff returns a - b as a delta, panicking if a is before b.
func (a Address) Diff(b Address) AddressDelta {
	if a < b {
		panic("address difference underflowed")
	}
	return AddressDelta(a - b)
}

// Int returns the address as a plain int, for indexing and formatting.
func (a Address) Int() int { return int(a) }

// Int returns the delta as a plain int.
func (d AddressDelta) Int() int { return int(d) }

// Add returns the sum of two deltas.
func (d AddressDelta) Add(other AddressDelta) AddressDelta { return d + other }

// Sub returns d - other, panicking if negative.
func (d AddressDelta) Sub(other AddressDelta) AddressDelta {
	if d < other {
		panic("address delta subtraction underflowed")
	}
	return d - other
}

// Mul returns d * n.
func (d AddressDelta) Mul(n int) AddressDelta { return AddressDelta(int(d) * n) }

// SumDeltas totals a slice of deltas, the Go equivalent of the Rust `Sum`
// impl used to total an IrSequence's code size.
func SumDeltas(ds []AddressDelta) AddressDelta {
	var total AddressDelta
	for _, d := range ds {
		total += d
	}
	return total
}
