// Command leasectl runs the clause, risk and summary engines from a terminal
// and maintains knowledge base documents.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"legallens-backend/internal/shared/config"
	"legallens-backend/internal/shared/telemetry"
)

var (
	version = "1.0.0"
	appName = "leasectl"

	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)
	colorBold   = color.New(color.Bold)
)

// options are shared by every subcommand.
type options struct {
	jsonOutput bool
	kbPath     string
	cfg        config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		colorRed.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   appName,
		Short: "Explain clauses, analyze rental agreements and manage the knowledge base",
		Long: `leasectl runs the same engines as the API against a knowledge base.

Examples:
  leasectl explain security deposit
  leasectl risks --file lease.txt
  leasectl summarize --file lease.txt --json
  leasectl kb validate knowledge.yaml
  leasectl kb publish knowledge.yaml --key knowledge/current.yaml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.cfg = config.Load()
			telemetry.SetOutput(cmd.ErrOrStderr())
			telemetry.SetLevel("warn")
		},
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of formatted text")
	root.PersistentFlags().StringVar(&opts.kbPath, "kb", "", "knowledge document to use instead of KNOWLEDGE_SOURCE")

	root.AddCommand(newExplainCmd(opts), newRisksCmd(opts), newSummarizeCmd(opts), newKBCmd(opts))
	return root
}
