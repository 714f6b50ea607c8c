package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for funnelkit.

Node arguments (connect, delete, label) complete to the labels of the funnel
in the current workspace.

Bash:
  $ source <(funnelkit completion bash)

Zsh:
  $ funnelkit completion zsh > "${fpath[1]}/_funnelkit"

Fish:
  $ funnelkit completion fish > ~/.config/fish/completions/funnelkit.fish

PowerShell:
  PS> funnelkit completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
	return cmd
}

// completeNodes completes node labels from the current workspace, with the
// node type as description. maxArgs limits how many positional node
// arguments are completed (0 for no limit).
func (c *CLI) completeNodes(maxArgs int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if maxArgs > 0 && len(args) >= maxArgs {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		s, _, err := c.openSession(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer s.Close()

		var out []string
		for _, n := range s.View().Nodes {
			if strings.HasPrefix(strings.ToLower(n.Label()), strings.ToLower(toComplete)) {
				out = append(out, n.Label()+"\t"+string(n.Type()))
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
