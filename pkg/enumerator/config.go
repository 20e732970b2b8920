package enumerator

import (
	"fmt"
	"strings"
)

// Algorithm selects the enumeration strategy.
type Algorithm string

const (
	// ReMUS recursively enumerates MUSes inside shrinking sub-regions
	// of the lattice, using the MUS/MSS duality to carve them out.
	ReMUS Algorithm = "remus"
	// TOME follows the trace between unexplored bottom and top points
	// and rotates found MUSes into new seeds.
	TOME Algorithm = "tome"
	// MARCO shrinks maximal unexplored seeds and grows the
	// satisfiable ones.
	MARCO Algorithm = "marco"
	// MARCOBottom picks minimal unexplored seeds, which are MUSes as
	// soon as they are unsatisfiable.
	MARCOBottom Algorithm = "marco-bottom"
	// MARCOAny picks whatever unexplored seed the map solver returns.
	MARCOAny Algorithm = "marco-any"
)

var algorithms = []Algorithm{ReMUS, TOME, MARCO, MARCOBottom, MARCOAny}

func ParseAlgorithm(s string) (Algorithm, error) {
	for _, a := range algorithms {
		if string(a) == strings.ToLower(s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown algorithm %q", s)
}

// Config holds the tunables of an enumeration run. The zero value is
// not usable, start from DefaultConfig.
type Config struct {
	Algorithm Algorithm `mapstructure:"algorithm"`

	// DimReduction is the fraction of a seed kept in the sub-region
	// ReMUS recurses into.
	DimReduction float64 `mapstructure:"dim-reduction"`
	// CritsThreshold is the fraction of known critical constraints
	// above which the critical constraints alone are tested before
	// shrinking.
	CritsThreshold float64 `mapstructure:"crits-threshold"`
	// MUSApprox is the fraction of the dimension by which an
	// unsatisfiable seed may exceed its minimal unexplored subset and
	// still be accepted without shrinking. Only used with HSD.
	MUSApprox float64 `mapstructure:"mus-approx"`
	// HSD enables accepting MUSes by the hitting set duality check.
	HSD bool `mapstructure:"hsd"`
	// ValidateMUS re-checks every exact MUS with the oracle before it
	// is recorded.
	ValidateMUS bool `mapstructure:"validate-mus"`
	// VerifyApprox shrinks every approximate MUS afterwards to
	// measure the approximation error.
	VerifyApprox bool `mapstructure:"verify-approx"`
	// GetImplies derives critical constraints from the blocked MSSes
	// before shrinking.
	GetImplies bool `mapstructure:"get-implies"`
	// CriticalsRotation widens critical constraints by model rotation
	// before shrinking.
	CriticalsRotation bool `mapstructure:"criticals-rotation"`
	// Rotation enables MUS rotation in TOME.
	Rotation bool `mapstructure:"rotation"`
	// ScopeLimit bounds the ReMUS recursion depth.
	ScopeLimit int `mapstructure:"scope-limit"`
	// MaxMUSes stops the enumeration after that many MUSes, 0 means
	// no limit.
	MaxMUSes int `mapstructure:"max-muses"`
}

func DefaultConfig() Config {
	return Config{
		Algorithm:      ReMUS,
		DimReduction:   0.5,
		CritsThreshold: 0.9,
		GetImplies:     true,
		Rotation:       true,
		ScopeLimit:     100,
	}
}

func (c Config) Validate() error {
	if _, err := ParseAlgorithm(string(c.Algorithm)); err != nil {
		return err
	}
	if c.DimReduction <= 0 || c.DimReduction > 1 {
		return fmt.Errorf("dim-reduction must be in (0, 1], got %v", c.DimReduction)
	}
	if c.CritsThreshold < 0 || c.CritsThreshold > 1 {
		return fmt.Errorf("crits-threshold must be in [0, 1], got %v", c.CritsThreshold)
	}
	if c.MUSApprox < 0 || c.MUSApprox > 1 {
		return fmt.Errorf("mus-approx must be in [0, 1], got %v", c.MUSApprox)
	}
	if c.ScopeLimit < 0 {
		return fmt.Errorf("scope-limit must not be negative, got %d", c.ScopeLimit)
	}
	if c.MaxMUSes < 0 {
		return fmt.Errorf("max-muses must not be negative, got %d", c.MaxMUSes)
	}
	return nil
}
