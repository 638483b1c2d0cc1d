package cli

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderTable draws a bordered table on a terminal and a plain
// markdown table otherwise, so output can be piped or pasted.
func renderTable(w io.Writer, headers []string, rows [][]string) string {
	t := table.New().Headers(headers...).Rows(rows...)
	if isTerminal(w) {
		t = t.Border(lipgloss.RoundedBorder()).StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	} else {
		t = t.Border(lipgloss.MarkdownBorder()).BorderTop(false).BorderBottom(false)
	}
	return t.Render()
}

// printReport prints per-repository counters followed by totals.
func printReport(cmd *cobra.Command, report domain.RunReport) {
	if len(report.Repos) == 0 {
		return
	}

	rows := make([][]string, 0, len(report.Repos)+1)
	for _, rr := range report.Repos {
		rows = append(rows, reportRow(rr.Repo, rr))
	}
	if len(report.Repos) > 1 {
		rows = append(rows, reportRow("total", report.Totals()))
	}

	out := cmd.OutOrStderr() // where cmd.Println writes
	cmd.Println(renderTable(out, []string{"Repository", "Purged", "Pull requests", "Skipped", "Files", "Pages", "Stop"}, rows))
}

func reportRow(name string, rr domain.RepoReport) []string {
	return []string{
		name,
		strconv.FormatInt(rr.Purged, 10),
		strconv.Itoa(rr.PullRequests),
		strconv.Itoa(rr.Skipped),
		strconv.Itoa(rr.Files),
		strconv.Itoa(rr.Pages),
		string(rr.Stop),
	}
}

// status describes a run's outcome in one word.
func status(r domain.RunRecord) string {
	switch {
	case r.Success:
		return "succeeded"
	case r.EndedAt.IsZero():
		return "running"
	default:
		return "failed"
	}
}

// formatTime renders a timestamp in UTC, or "-" when unset.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func joinRepos(repos []string) string {
	return strings.Join(repos, ", ")
}
