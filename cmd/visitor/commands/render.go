package commands

import (
	"context"
	"log/slog"
	"os"

	"resume-visitor/internal/components/telemetry"
	"resume-visitor/internal/page"
	"resume-visitor/internal/serviceutil"
	"resume-visitor/internal/visitor"

	"github.com/spf13/cobra"
)

var (
	renderIn  *string
	renderOut *string
)

func init() {
	renderIn = renderCmd.Flags().String("in", "index.html", "The page to report a visit for.")
	renderOut = renderCmd.Flags().String("out", "", "Where to write the rendered page, defaults to stdout.")
	rootCmd.AddCommand(renderCmd)
}

// renderPage loads the page at `in`, reports a visit into it and writes the result
// to `out` ("" means stdout). The page is written even if the visit failed.
func renderPage(ctx context.Context, client visitor.Client, in, out string) (bool, error) {
	p, err := page.Load(in)
	if err != nil {
		return false, err
	}

	rendered := client.ReportVisit(ctx, p)

	if out == "" {
		return rendered, p.Render(os.Stdout)
	}
	f, err := os.Create(out)
	if err != nil {
		return rendered, err
	}
	defer f.Close()
	return rendered, p.Render(f)
}

var renderCmd = &cobra.Command{
	Use:   "render [--in <page.html>] [--out <rendered.html>]",
	Short: "Reports a visit and renders the visitor count into a page.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		client, err := visitor.NewClient(cfg.ClientOptions(), telemetry.NewSlogAPIFromLogger(nil))
		if err != nil {
			serviceutil.Fatal("failed to initialize visitor client", err)
		}

		rendered, err := renderPage(cmd.Context(), client, *renderIn, *renderOut)
		if err != nil {
			serviceutil.Fatal("failed to render page", err)
		}
		slog.Info("page rendered", "in", *renderIn, "out", *renderOut, "visitor_count", rendered)
	},
}
