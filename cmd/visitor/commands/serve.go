package commands

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"resume-visitor/internal/components/telemetry"
	"resume-visitor/internal/page"
	"resume-visitor/internal/serviceutil"
	"resume-visitor/internal/visitor"

	"github.com/spf13/cobra"
)

var (
	servePage *string
	servePort *int
)

func init() {
	servePage = serveCmd.Flags().String("page", "index.html", "The page to serve.")
	servePort = serveCmd.Flags().Int("port", 8080, "The port to listen on.")
	rootCmd.AddCommand(serveCmd)
}

// pageHandler serves the page with the visitor count rendered into it, each
// GET is a page load and reports one visit.
type pageHandler struct {
	client   visitor.Client
	template *page.Page
}

func newPageHandler(client visitor.Client, template *page.Page) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", pageHandler{client: client, template: template})
	return mux
}

func (h pageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := h.template.Clone()
	h.client.ReportVisit(r.Context(), p)

	var buff bytes.Buffer
	err := p.Render(&buff)
	if err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buff.Bytes())
}

var serveCmd = &cobra.Command{
	Use:   "serve [--page <page.html>] [--port <port>]",
	Short: "Serves a page, rendering the visitor count into it on every load.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		tel := telemetry.NewSlogAPIFromLogger(nil)
		client, err := visitor.NewClient(cfg.ClientOptions(), tel)
		if err != nil {
			serviceutil.Fatal("failed to initialize visitor client", err)
		}
		template, err := page.Load(*servePage)
		if err != nil {
			serviceutil.Fatal("failed to load page", err)
		}

		telemetry.InstrumentPerfStats(ctx, time.Second*30, tel)

		err = serviceutil.ServeHttp(ctx, fmt.Sprintf("0.0.0.0:%d", *servePort), newPageHandler(client, template))
		if err != nil {
			serviceutil.Fatal("failed to serve page", err)
		}
	},
}
