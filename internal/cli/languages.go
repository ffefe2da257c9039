package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fumishiki/polyscript/internal/config"
	"github.com/fumishiki/polyscript/internal/dispatch"
)

// Represents 'polyscript languages'.
type LanguagesCmd struct{}

// Executes the languages command.
func (c *LanguagesCmd) Run(cfg *config.Config) error {
	table, err := cfg.Table()
	if err != nil {
		return err
	}

	entries := table.Entries()
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Lang))
	}

	r := lipgloss.NewRenderer(stdout)
	tag := r.NewStyle().Bold(true).Width(width + 2)
	kind := r.NewStyle().Faint(true).Width(len(dispatch.KindSubprocess) + 2)

	for _, e := range entries {
		fmt.Fprintf(stdout, "%s%s%s\n", tag.Render(e.Lang), kind.Render(string(e.Kind)), describe(e))
	}
	return nil
}

// One-line description of an entry.
func describe(e dispatch.Entry) string {
	if e.Help != "" {
		return e.Help
	}
	switch e.Kind {
	case dispatch.KindCompile:
		return strings.Join(e.Build, " ")
	case dispatch.KindEmbedded:
		return strings.Join(e.Fallback, " ")
	}
	return strings.Join(e.Command, " ")
}
