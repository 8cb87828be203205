package commands

import (
	"os"

	"resume-visitor/internal/components/telemetry"
	"resume-visitor/internal/serviceutil"
	"resume-visitor/internal/verifier"

	"github.com/spf13/cobra"
)

var (
	verifySite     *string
	verifyEndpoint *string
)

func init() {
	verifySite = verifyCmd.Flags().String("site", "", "The url of the deployed site, overrides the config.")
	verifyEndpoint = verifyCmd.Flags().String("endpoint", "", "The url of the counting service, overrides the config.")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify [--site <url>] [--endpoint <url>]",
	Short: "Checks the deployed site and its counting service against the visitor count contract.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		opts := cfg.VerifierOptions()
		if *verifySite != "" {
			opts.SiteURL = *verifySite
		}
		if *verifyEndpoint != "" {
			opts.Endpoint = *verifyEndpoint
		}

		v, err := verifier.New(opts, telemetry.NewSlogAPIFromLogger(nil))
		if err != nil {
			serviceutil.Fatal("failed to initialize verifier", err)
		}

		report := v.Run(cmd.Context())
		report.Render(os.Stdout)
		if !report.Passed() {
			exit(1)
		}
	},
}
