package mus

import (
	"strings"
)

// Formula is a bit vector over the constraint indices of a problem
// instance. Bit i is set when constraint i is part of the set.
type Formula []bool

// NewFormula returns a Formula of the given dimension with every bit
// set to value.
func NewFormula(dimension int, value bool) Formula {
	f := make(Formula, dimension)
	if value {
		for i := range f {
			f[i] = true
		}
	}
	return f
}

// FormulaOf returns a Formula of the given dimension whose set bits are
// exactly the provided indices.
func FormulaOf(dimension int, indices ...int) Formula {
	f := make(Formula, dimension)
	for _, i := range indices {
		f[i] = true
	}
	return f
}

// Count returns the number of set bits.
func (f Formula) Count() int {
	n := 0
	for _, b := range f {
		if b {
			n++
		}
	}
	return n
}

func (f Formula) Clone() Formula {
	g := make(Formula, len(f))
	copy(g, f)
	return g
}

func (f Formula) Equal(g Formula) bool {
	if len(f) != len(g) {
		return false
	}
	for i := range f {
		if f[i] != g[i] {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every bit set in f is also set in g.
func (f Formula) SubsetOf(g Formula) bool {
	for i, b := range f {
		if b && !g[i] {
			return false
		}
	}
	return true
}

// Indices returns the set bits of f in increasing order.
func (f Formula) Indices() []int {
	idx := make([]int, 0, len(f))
	for i, b := range f {
		if b {
			idx = append(idx, i)
		}
	}
	return idx
}

func (f Formula) Complement() Formula {
	g := make(Formula, len(f))
	for i, b := range f {
		g[i] = !b
	}
	return g
}

func (f Formula) Union(g Formula) Formula {
	h := f.Clone()
	for i, b := range g {
		if b {
			h[i] = true
		}
	}
	return h
}

func (f Formula) Intersect(g Formula) Formula {
	h := f.Clone()
	for i := range h {
		h[i] = h[i] && g[i]
	}
	return h
}

// Minus returns the bits of f that are not set in g.
func (f Formula) Minus(g Formula) Formula {
	h := f.Clone()
	for i, b := range g {
		if b {
			h[i] = false
		}
	}
	return h
}

// String renders f as a string of 0s and 1s, constraint 0 first.
func (f Formula) String() string {
	var sb strings.Builder
	sb.Grow(len(f))
	for _, b := range f {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
