package enumerator

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/mustool/pkg/mus"
)

type EventKind int

const (
	// MUSFound is traced for every recorded MUS.
	MUSFound EventKind = iota
	// MSSFound is traced for every blocked MSS.
	MSSFound
)

func (k EventKind) String() string {
	switch k {
	case MUSFound:
		return "mus"
	case MSSFound:
		return "mss"
	}
	return "unknown"
}

// Event describes one discovery. Stats is a snapshot taken right after
// the discovery was recorded.
type Event struct {
	Kind EventKind
	// MUS is set for MUSFound events.
	MUS *mus.MUS
	// MSS is set for MSSFound events.
	MSS   mus.Formula
	Stats Stats
	// Intersection and Union are the sizes of the aggregates over the
	// MUSes found so far.
	Intersection int
	Union        int
}

type Tracer interface {
	Trace(e Event)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ Event) {
}

// LoggingTracer logs one line per MUS at info level and one line per
// MSS at debug level.
type LoggingTracer struct {
	Logger logrus.FieldLogger
}

func (t LoggingTracer) Trace(e Event) {
	switch e.Kind {
	case MUSFound:
		fields := logrus.Fields{
			"mus":           e.MUS.ID,
			"dimension":     e.MUS.Dimension(),
			"checks":        e.Stats.Checks,
			"time":          e.Stats.Elapsed.Round(time.Millisecond).String(),
			"unexSat":       e.Stats.UnexSat,
			"unexUnsat":     e.Stats.UnexUnsat,
			"criticals":     e.Stats.Criticals,
			"intersections": e.Intersection,
			"rotatedMUSes":  e.Stats.RotatedMUSes,
			"explicitSeeds": e.Stats.ExplicitSeeds,
			"union":         e.Union,
			"seedDimension": e.MUS.SeedDimension,
			"backbonesUsed": e.Stats.BackbonesUsed,
			"backbones":     e.Stats.Backbones,
		}
		if e.MUS.Skipped() {
			fields["duration"] = "skipped"
		} else {
			fields["duration"] = e.MUS.Duration.String()
		}
		if e.MUS.Approximate {
			fields["approximate"] = true
		}
		t.Logger.WithFields(fields).Info("found MUS")
	case MSSFound:
		t.Logger.WithFields(logrus.Fields{
			"mss":       e.Stats.MSSes,
			"dimension": e.MSS.Count(),
			"checks":    e.Stats.Checks,
		}).Debug("found MSS")
	}
}

// MultiTracer forwards every event to each of its tracers in order.
type MultiTracer []Tracer

func (t MultiTracer) Trace(e Event) {
	for _, each := range t {
		each.Trace(e)
	}
}
