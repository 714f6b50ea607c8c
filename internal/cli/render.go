package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/render"
	"github.com/matzehuels/funnelkit/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file; the extension picks the format
	format   string  // explicit format, overrides the extension
	detailed bool    // show type and button label under each node
	issues   bool    // outline nodes that have validation issues
	scale    float64 // PNG scale factor
}

// renderCommand draws the funnel as a left-to-right diagram.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{output: "funnel.svg", issues: true, scale: 2}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the funnel to SVG, DOT, PDF or PNG",
		Long: `Render the funnel as a left-to-right diagram. Nodes are filled with their
type colour; nodes with errors are outlined red and nodes with warnings amber.

PDF and PNG output need rsvg-convert (librsvg) on PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(opts.output, opts.format)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), format, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, dot, pdf, png (default from extension)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node type and button label")
	cmd.Flags().BoolVar(&opts.issues, "issues", opts.issues, "highlight nodes with issues")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	return cmd
}

// outputFormat picks the format from an explicit flag or the file extension.
func outputFormat(output, explicit string) (string, error) {
	format := strings.ToLower(explicit)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	if !slices.Contains(render.Formats, format) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want %s)", format, strings.Join(render.Formats, ", "))
	}
	return format, nil
}

func (c *CLI) runRender(ctx context.Context, format string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	s, _, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	v := s.View()
	if v.Empty {
		printWarning("The funnel is empty, rendering a blank diagram")
	}

	dopts := nodelink.Options{Detailed: opts.detailed}
	if opts.issues {
		dopts.Issues = v.Issues
	}
	doc := s.Document()
	dot := nodelink.ToDOT(doc.Nodes, doc.Edges, dopts)

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Rendering "+format+"...")
	spinner.Start()
	data, err := renderAs(ctx, format, dot, opts.scale)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	prog.done("Rendered " + opts.output)

	printSuccess("Rendered %d nodes", len(v.Nodes))
	printFile(opts.output)
	return nil
}

func renderAs(ctx context.Context, format, dot string, scale float64) ([]byte, error) {
	if format == "dot" {
		return []byte(dot), nil
	}

	svg, err := nodelink.RenderSVG(dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}

	switch format {
	case "pdf":
		return render.ToPDF(ctx, svg)
	case "png":
		return render.ToPNG(ctx, svg, scale)
	default:
		return svg, nil
	}
}
