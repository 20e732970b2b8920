package mus

// Oracle answers satisfiability questions about subsets of the
// constraints of a single problem instance. Implementations may keep
// solver state between calls but must answer deterministically for a
// given Formula.
type Oracle interface {
	// Dimension returns the number of constraints D of the instance.
	Dimension() int

	// Solve reports whether the constraints selected by f are
	// satisfiable. When core is true and the answer is unsatisfiable,
	// the oracle may clear bits of f so that it becomes a smaller
	// unsatisfiable core. When grow is true and the answer is
	// satisfiable, the oracle may set additional bits of f for
	// constraints satisfied by the model it found. ErrUnknown is
	// returned when the oracle cannot decide.
	Solve(f Formula, core, grow bool) (bool, error)

	// Shrink reduces the unsatisfiable f to a subset that is minimal
	// with respect to the answers obtained during the call. Bits set
	// in crits are known to be critical and are never tried.
	Shrink(f, crits Formula) (Formula, error)

	// Grow extends the satisfiable f to a superset that is maximal
	// with respect to the answers obtained during the call.
	Grow(f Formula) (Formula, error)

	// CriticalsRotation widens crits with further constraints that
	// are critical for seed. A no-op is a valid implementation.
	CriticalsRotation(crits, seed Formula) error

	// Checks returns the number of Solve calls performed so far.
	Checks() int
}
