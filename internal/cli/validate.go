package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	fio "github.com/matzehuels/funnelkit/pkg/io"
	"github.com/matzehuels/funnelkit/pkg/validate"
)

// validateCommand checks the funnel, or a funnel document on disk, and exits
// non-zero when any issue has error severity.
func (c *CLI) validateCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a funnel for dead ends and orphaned steps",
		Long: `Check the funnel in the current workspace, or the given funnel document,
and list every issue found. Warnings point at steps that look unfinished;
errors point at steps no visitor can ever reach or leave.

Exits with status 1 when at least one error is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}

			var (
				report validate.Report
				source string
			)
			if len(args) == 1 {
				doc, err := fio.ImportJSON(args[0])
				if err != nil {
					return err
				}
				report = validate.NewReport(doc.Nodes, doc.Edges)
				source = args[0]
			} else {
				s, _, err := c.openSession(cmd.Context())
				if err != nil {
					return err
				}
				defer s.Close()
				report = s.Report()
				source = "workspace " + s.Workspace()
			}

			max := cfg.Display.MaxIssues
			if all {
				max = 0
			}
			printIssues(report, max)
			if report.Status == validate.StatusIssues {
				printDetail("%s: %d warnings, %d errors", source, report.Warnings(), report.Errors())
			}

			if report.Errors() > 0 {
				loggerFromContext(cmd.Context()).Debugf("Validation failed with %d errors", report.Errors())
				return errSilent
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, fmt.Sprintf("show every issue, not only the first %d", defaultConfig().Display.MaxIssues))
	return cmd
}
