package textsummary

import (
	"fmt"
	"io"

	"github.com/wp-ansible/purelog/internal/linefilter"
)

// TextReportBuilder writes the human-readable outcome of a run.
type TextReportBuilder struct {
	out io.Writer
}

// NewTextReportBuilder creates a builder writing to out (normally stdout).
func NewTextReportBuilder(out io.Writer) *TextReportBuilder {
	return &TextReportBuilder{out: out}
}

// WriteConfirmation prints the single completion line naming the destination.
func (b *TextReportBuilder) WriteConfirmation(marker, dest string) error {
	_, err := fmt.Fprintf(b.out, "Lines containing '%s' have been removed. Cleaned file saved as %s.\n", marker, dest)
	return err
}

// WriteCounts prints the read/kept/removed tally.
func (b *TextReportBuilder) WriteCounts(counts linefilter.LineCounts) error {
	_, err := fmt.Fprintf(b.out, "Lines read: %d, kept: %d, removed: %d\n", counts.Read, counts.Kept, counts.Dropped)
	return err
}
