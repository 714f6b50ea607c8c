package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/funnelkit/pkg/editor"
	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/funnel"
)

// templatesCommand lists the node palette.
func (c *CLI) templatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the node types that can be added to a funnel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(templatesTable())
			return nil
		},
	}
}

func templatesTable() string {
	rows := make([][]string, 0, len(funnel.Types()))
	for _, t := range funnel.Types() {
		tpl, _ := funnel.TemplateFor(t)
		var traits []string
		if funnel.IsRepeatable(t) {
			traits = append(traits, "numbered")
		}
		if funnel.IsTerminal(t) {
			traits = append(traits, "terminal")
		}
		rows = append(rows, []string{typeBadge(t), string(t), tpl.ButtonLabel, strings.Join(traits, ", "), tpl.Description})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Template", "Type", "Button", "Traits", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case col == 1 || col == 3:
				return StyleDim
			default:
				return lipgloss.NewStyle()
			}
		}).
		Render()
}

// showCommand prints the current funnel.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the nodes, connections and issues of the funnel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			v := s.View()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			}
			printView(s.Workspace(), v, cfg.Display.MaxIssues)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	return cmd
}

func printView(workspace string, v editor.View, maxIssues int) {
	fmt.Println(StyleTitle.Render("Funnel") + " " + StyleDim.Render(workspace))
	printStats(len(v.Nodes), len(v.Edges), v.Status)
	if !v.Empty {
		printNewline()
		fmt.Println(nodeTable(v, -1))
	}
	if len(v.Edges) > 0 {
		printNewline()
		for _, line := range edgeLines(v) {
			fmt.Println("  " + line)
		}
	}
	printNewline()
	printIssues(v.Report(), maxIssues)
}

// addCommand drops a node onto the canvas.
func (c *CLI) addCommand() *cobra.Command {
	var (
		x, y  float64
		label string
	)

	cmd := &cobra.Command{
		Use:       "add <type>",
		Short:     "Add a node to the funnel",
		Long:      "Add a node of the given type. Types: " + typeNames() + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: typeArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := funnel.ParseNodeType(args[0])
			if err != nil {
				return err
			}
			if label != "" {
				if err := errors.ValidateLabel(label); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			s, _, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.Drop(ctx, t, funnel.Position{X: x, Y: y})
			if err != nil {
				return err
			}
			if label != "" {
				if n, err = s.Relabel(ctx, n.ID, label, ""); err != nil {
					return err
				}
			}

			printSuccess("Added %s", n.Label())
			printKeyValue("ID", n.ID)
			printNextStep("Connect it", appName+" connect <source> "+shortRef(s.View(), n))
			return nil
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "canvas x position")
	cmd.Flags().Float64Var(&y, "y", 0, "canvas y position")
	cmd.Flags().StringVar(&label, "label", "", "label to use instead of the generated one")
	return cmd
}

// connectCommand adds an edge. Nodes may be named by id or by label.
func (c *CLI) connectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <source> <target>",
		Short: "Connect two nodes",
		Long: `Connect two nodes. Each node may be given by id or by its label, as long as
the label is unique in the funnel. Thank-you pages cannot be a source.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeNodes(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			v := s.View()
			src, err := resolveNode(v, args[0])
			if err != nil {
				return err
			}
			dst, err := resolveNode(v, args[1])
			if err != nil {
				return err
			}

			e, err := s.Connect(ctx, src.ID, dst.ID)
			if err != nil {
				if errors.Is(err, errors.ErrCodeConnectionRejected) {
					printError("Cannot connect %s to %s: %s", src.Label(), dst.Label(), errors.UserMessage(err))
					return errSilent
				}
				return err
			}

			printSuccess("Connected %s %s %s", src.Label(), iconArrow, dst.Label())
			printKeyValue("ID", e.ID)
			return nil
		},
	}
}

// disconnectCommand removes an edge.
func (c *CLI) disconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <edge-id>",
		Short: "Remove a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Disconnect(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Removed connection %s", args[0])
			return nil
		},
	}
}

// deleteCommand removes nodes and every connection touching them.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <node>...",
		Aliases:           []string{"rm"},
		Short:             "Delete nodes and their connections",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeNodes(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			v := s.View()
			ids := make([]string, 0, len(args))
			for _, ref := range args {
				n, err := resolveNode(v, ref)
				if err != nil {
					return err
				}
				ids = append(ids, n.ID)
			}

			nodes, edges, err := s.Delete(ctx, ids...)
			if err != nil {
				return err
			}
			printSuccess("Deleted %d nodes and %d connections", nodes, edges)
			return nil
		},
	}
}

// labelCommand renames a node.
func (c *CLI) labelCommand() *cobra.Command {
	var button string

	cmd := &cobra.Command{
		Use:               "label <node> [label]",
		Short:             "Change the label or button label of a node",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: c.completeNodes(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var label string
			if len(args) == 2 {
				label = args[1]
			}
			if label == "" && button == "" {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to change: give a label or --button")
			}

			ctx := cmd.Context()
			s, _, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := resolveNode(s.View(), args[0])
			if err != nil {
				return err
			}
			updated, err := s.Relabel(ctx, n.ID, label, button)
			if err != nil {
				return err
			}
			printSuccess("Updated %s", updated.Label())
			printKeyValue("Button", updated.Data.ButtonLabel)
			return nil
		},
	}

	cmd.Flags().StringVar(&button, "button", "", "new button label")
	return cmd
}

// clearCommand empties the funnel. Label numbering continues afterwards.
func (c *CLI) clearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every node and connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				printWarning("This removes the whole funnel in the current workspace")
				printNextStep("Run again with", appName+" clear --yes")
				return errSilent
			}

			ctx := cmd.Context()
			s, _, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Clear(ctx); err != nil {
				return err
			}
			printSuccess("Cleared workspace %s", s.Workspace())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// =============================================================================
// Helpers
// =============================================================================

// resolveNode finds a node by id, falling back to a unique label match
// (case-insensitive).
func resolveNode(v editor.View, ref string) (funnel.Node, error) {
	if n, ok := v.Node(ref); ok {
		return n.Node, nil
	}

	var matches []funnel.Node
	for _, n := range v.Nodes {
		if strings.EqualFold(n.Label(), ref) {
			matches = append(matches, n.Node)
		}
	}
	switch len(matches) {
	case 0:
		return funnel.Node{}, errors.New(errors.ErrCodeNodeNotFound, "no node with id or label %q", ref)
	case 1:
		return matches[0], nil
	default:
		return funnel.Node{}, errors.New(errors.ErrCodeInvalidInput, "label %q matches %d nodes, use the id", ref, len(matches))
	}
}

// shortRef is how a node is best referred to on the command line: its label
// when [resolveNode] would find it that way, otherwise its id.
func shortRef(v editor.View, n funnel.Node) string {
	if found, err := resolveNode(v, n.Label()); err != nil || found.ID != n.ID {
		return n.ID
	}
	if strings.ContainsAny(n.Label(), " \t") {
		return fmt.Sprintf("%q", n.Label())
	}
	return n.Label()
}

func typeNames() string {
	return strings.Join(typeArgs(), ", ")
}

func typeArgs() []string {
	names := make([]string, 0, len(funnel.Types()))
	for _, t := range funnel.Types() {
		names = append(names, string(t))
	}
	return names
}
