package solver

import (
	"fmt"
	"io"

	"github.com/operator-framework/mustool/pkg/mus"
)

// SearchPosition describes one decided subset.
type SearchPosition interface {
	Assumed() mus.Formula
	Satisfiable() bool
	// Core is nil unless the subset was unsatisfiable.
	Core() mus.Formula
}

type Tracer interface {
	Trace(p SearchPosition)
}

type position struct {
	assumed mus.Formula
	core    mus.Formula
	sat     bool
}

func (p position) Assumed() mus.Formula {
	return p.assumed
}

func (p position) Satisfiable() bool {
	return p.sat
}

func (p position) Core() mus.Formula {
	return p.core
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nAssumptions: %s\n", p.Assumed())
	if p.Satisfiable() {
		fmt.Fprintf(t.Writer, "Satisfiable\n")
		return
	}
	fmt.Fprintf(t.Writer, "Conflict: %s\n", p.Core())
}
