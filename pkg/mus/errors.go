package mus

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknown is returned by an Oracle that could not decide the
	// satisfiability of a Formula.
	ErrUnknown = errors.New("oracle returned unknown")

	// ErrContractViolation is wrapped by every ContractViolation.
	ErrContractViolation = errors.New("contract violation")
)

// ContractViolation reports a broken invariant of the enumeration, such
// as a satisfiable input or a recorded MUS that is not minimal. It is
// never recoverable.
type ContractViolation struct {
	Reason  string
	Formula Formula
}

func NewContractViolation(reason string, f Formula) *ContractViolation {
	return &ContractViolation{Reason: reason, Formula: f}
}

func (e *ContractViolation) Error() string {
	if e.Formula == nil {
		return fmt.Sprintf("%s: %s", ErrContractViolation, e.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrContractViolation, e.Reason, e.Formula)
}

func (e *ContractViolation) Unwrap() error {
	return ErrContractViolation
}
