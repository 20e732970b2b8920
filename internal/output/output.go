// Package output persists MUSes as the labels of their constraints.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"

	"github.com/operator-framework/mustool/pkg/mus"
)

// Writer appends every MUS as the labels of its constraints, one per
// line, followed by an empty line.
type Writer struct {
	w      *bufio.Writer
	closer io.Closer
	labels []string
}

// NewWriter writes to w. labels[i] is the label of constraint i.
func NewWriter(w io.Writer, labels []string) *Writer {
	return &Writer{w: bufio.NewWriter(w), labels: labels}
}

// Create opens path for appending, creating it if needed.
func Create(path string, labels []string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}
	w := NewWriter(f, labels)
	w.closer = f
	return w, nil
}

func (w *Writer) Write(m mus.MUS) error {
	lines := lo.Map(m.Indices, func(i int, _ int) string {
		if i < len(w.labels) {
			return w.labels[i]
		}
		return fmt.Sprintf("constraint %d", i)
	})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w.w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w.w); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
