// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/video-pipeline/internal/db"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
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

// PrintCheckpointTree outputs a video's checkpoint forest with branch forks
// indented under their parents.
func (p *Printer) PrintCheckpointTree(forest []*db.CheckpointNode) {
	if len(forest) == 0 {
		p.printBox("CHECKPOINT TREE", "(no checkpoints)")
		return
	}

	var sb strings.Builder
	for _, root := range forest {
		writeNode(&sb, root, 0)
	}
	p.printBox("CHECKPOINT TREE", strings.TrimSuffix(sb.String(), "\n"))
}

func writeNode(sb *strings.Builder, node *db.CheckpointNode, depth int) {
	cp := node.Checkpoint
	marker := "•"
	if cp.Status == db.CheckpointStatusApproved {
		marker = "✓"
	}
	sb.WriteString(fmt.Sprintf("%s%s phase %d  [%s]  %s  $%.2f\n",
		strings.Repeat("  ", depth), marker, cp.PhaseNumber, cp.BranchName,
		cp.Status, cp.CostUSD))
	for _, child := range node.Children {
		writeNode(sb, child, depth+1)
	}
}

// PrintBranches outputs one line per active branch of a video.
func (p *Printer) PrintBranches(branches []db.BranchSummary) {
	if len(branches) == 0 {
		p.printBox("BRANCHES", "(no branches)")
		return
	}

	var sb strings.Builder
	for _, b := range branches {
		cont := ""
		if b.CanContinue {
			cont = "  (can continue)"
		}
		sb.WriteString(fmt.Sprintf("%-16s phase %d  %s%s\n",
			b.BranchName, b.PhaseNumber, b.Status, cont))
	}
	p.printBox("BRANCHES", strings.TrimSuffix(sb.String(), "\n"))
}
