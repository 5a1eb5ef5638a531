// Package observability provides formatted console output for run results.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/andrii-d/autoapply/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// descriptionPreview caps how much of a posting description is shown
	descriptionPreview = 150
)

// Printer handles formatted output of run results.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPosting outputs one posting with its reply and submission outcome.
func (p *Printer) PrintPosting(index int, posting *types.Posting) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Source:  %s\n", posting.Source))
	sb.WriteString(fmt.Sprintf("Price:   %s\n", posting.Price))
	sb.WriteString(fmt.Sprintf("Link:    %s\n", posting.Link))

	desc := posting.Description
	if len(desc) > descriptionPreview {
		desc = desc[:descriptionPreview] + "..."
	}
	if desc != "" {
		sb.WriteString(fmt.Sprintf("About:   %s\n", desc))
	}

	if posting.ReplyGenerated {
		sb.WriteString("\nReply:\n")
		sb.WriteString(posting.ReplyText)
		sb.WriteString("\n")
	} else {
		sb.WriteString("\n[no reply generated]\n")
	}

	if posting.SubmissionStatus != types.StatusNotAttempted {
		sb.WriteString(fmt.Sprintf("\nSubmission: %s", posting.SubmissionStatus))
		if posting.SubmissionMessage != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", posting.SubmissionMessage))
		}
		sb.WriteString("\n")
	}

	p.printBox(fmt.Sprintf("Posting %d: %s", index, posting.Title), sb.String())
}

// PrintRunSummary outputs the final tally of a run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRunSummary(postings []types.Posting, snapshotPath string) {
	counts := make(map[types.SubmissionStatus]int)
	replied := 0
	for i := range postings {
		counts[postings[i].SubmissionStatus]++
		if postings[i].ReplyGenerated {
			replied++
		}
	}

	fmt.Fprintf(p.out, "\nFound %d matching postings, %d with generated replies\n", len(postings), replied)
	if counts[types.StatusSubmitted] > 0 || counts[types.StatusPrepared] > 0 ||
		counts[types.StatusSkipped] > 0 || counts[types.StatusFailed] > 0 {
		fmt.Fprintf(p.out, "Submissions: %d submitted, %d prepared, %d skipped, %d failed\n",
			counts[types.StatusSubmitted], counts[types.StatusPrepared],
			counts[types.StatusSkipped], counts[types.StatusFailed])
	}
	fmt.Fprintf(p.out, "Snapshot: %s\n", snapshotPath)
}
