package cli

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// editCommand starts the interactive terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the funnel interactively",
		Long: `Open an interactive editor for the funnel in the current workspace.

Keys:
  1-5        add a node of the numbered type
  ↑/↓ (j/k)  move between nodes
  c, enter   pick the source, then the target of a connection
  esc        cancel a pending connection
  d          delete the selected node and its connections
  X          clear the funnel
  q          quit

Changes are saved as they are made.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Session log lines would tear the alternate screen; failures
			// show up in the status line instead.
			s, cfg, err := c.openSessionWith(ctx, newLogger(io.Discard, c.Logger.GetLevel()))
			if err != nil {
				return err
			}
			defer s.Close()

			p := tea.NewProgram(NewEditorModel(ctx, s, cfg.Display.MaxIssues), tea.WithAltScreen(), tea.WithContext(ctx))
			final, err := p.Run()
			if err != nil {
				return err
			}

			if fm, ok := final.(EditorModel); ok {
				v := fm.Funnel
				printSuccess("Saved %d nodes and %d connections", len(v.Nodes), len(v.Edges))
				printStats(len(v.Nodes), len(v.Edges), v.Status)
			}
			return nil
		},
	}
}
