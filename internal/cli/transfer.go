package cli

import (
	"os"

	"github.com/spf13/cobra"

	fio "github.com/matzehuels/funnelkit/pkg/io"
)

// exportCommand writes the funnel document to a file or stdout.
func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file|->",
		Short: "Export the funnel as a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if args[0] == "-" {
				return s.Export(os.Stdout)
			}

			doc := s.Document()
			if err := fio.ExportJSON(doc, args[0]); err != nil {
				return err
			}
			printSuccess("Exported %d nodes and %d connections", len(doc.Nodes), len(doc.Edges))
			printFile(args[0])
			return nil
		},
	}
}

// importCommand replaces the funnel with a JSON document. A malformed
// document leaves the workspace untouched.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the funnel with a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cfg, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			in := os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			if err := s.Import(ctx, in); err != nil {
				printError("Import failed, the funnel was left unchanged")
				return err
			}

			v := s.View()
			printSuccess("Imported %d nodes and %d connections", len(v.Nodes), len(v.Edges))
			printIssues(v.Report(), cfg.Display.MaxIssues)
			return nil
		},
	}
}
