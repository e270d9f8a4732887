package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mesdx/hdrenum/internal/converter"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// printSummary writes a one-line run summary to stderr.
func printSummary(cmd *cobra.Command, r converter.Report) {
	mark := successStyle.Render("✓")
	if r.Skipped > 0 || r.UnknownValue > 0 {
		mark = warnStyle.Render("!")
	}
	cmd.PrintErrf("%s %d enums from %d files (%d unreadable, %d duplicate, %d anonymous, %d empty, %d unknown values)\n",
		mark, r.Registered, r.Files, r.Skipped, r.Duplicate, r.Anonymous, r.Empty, r.UnknownValue)
}
