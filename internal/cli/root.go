package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/funnelkit/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Funnelkit builds and checks sales funnels",
		Long: `Funnelkit is a toolkit for designing sales funnels: sales pages, order pages,
upsells, downsells and thank-you pages connected into a flow. It checks the flow
for dead ends and orphaned steps as you build it, and can serve a JSON API for
browser-based editors.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/funnelkit/config.toml)")
	root.PersistentFlags().StringVarP(&c.workspace, "workspace", "w", "", "workspace to edit (overrides config)")

	root.AddGroup(
		&cobra.Group{ID: groupEdit, Title: "Editing:"},
		&cobra.Group{ID: groupOutput, Title: "Checking and output:"},
	)

	for _, cmd := range []*cobra.Command{
		c.addCommand(),
		c.connectCommand(),
		c.disconnectCommand(),
		c.deleteCommand(),
		c.labelCommand(),
		c.clearCommand(),
		c.importCommand(),
		c.editCommand(),
	} {
		cmd.GroupID = groupEdit
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		c.templatesCommand(),
		c.showCommand(),
		c.validateCommand(),
		c.exportCommand(),
		c.renderCommand(),
		c.serveCommand(),
	} {
		cmd.GroupID = groupOutput
		root.AddCommand(cmd)
	}
	root.AddCommand(c.storageCommand())
	root.AddCommand(c.completionCommand())

	return root
}

const (
	groupEdit   = "edit"
	groupOutput = "output"
)
