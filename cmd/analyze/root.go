package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stockanalyzer/internal/app"
	"stockanalyzer/internal/config"
	"stockanalyzer/internal/logger"
	"stockanalyzer/internal/report"
	"stockanalyzer/internal/report/xlsx"
	"stockanalyzer/internal/symbols"
)

type options struct {
	configPath  string
	symbolsCSV  string
	symbolsFile string
	outputDir   string
	delay       time.Duration
	noXLSX      bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze where NSE stocks trade within their 52-week, 3-month and 1-month ranges",
		Long: `Analyze resolves a quote for every watched NSE symbol (Yahoo Finance, then
the NSE quote API, then Google Finance), fills missing range bounds, scores the
current price against each range and writes a console summary plus an Excel
report.

Examples:
  analyze                                   # default watch list
  analyze --symbols RELIANCE,TCS --delay 0
  analyze --symbols-file symbols.yaml --output-dir reports`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.toml")
	f.StringVarP(&opts.symbolsCSV, "symbols", "s", "", "comma-separated tickers, overrides the symbols file")
	f.StringVar(&opts.symbolsFile, "symbols-file", "", "YAML watch list")
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for the Excel report")
	f.DurationVar(&opts.delay, "delay", -1, "pause between symbols (default from config)")
	f.BoolVar(&opts.noXLSX, "no-xlsx", false, "skip the Excel report")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts options, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if opts.outputDir != "" {
		cfg.Runner.OutputDir = opts.outputDir
	}
	if cmd.Flags().Changed("delay") && opts.delay >= 0 {
		cfg.Runner.SymbolDelaySec = opts.delay.Seconds()
	}
	cfg.Logging.ServiceName = "analyze"
	log, err := logger.Init(cfg.Logging)
	if err != nil {
		return err
	}

	syms, err := pickSymbols(opts, cfg)
	if err != nil {
		return err
	}

	runner := app.NewRunner(cfg, app.NewProviders(cfg, log), log)
	res := runner.Run(ctx, syms)

	fmt.Fprintf(out, "\nNSE Stock Analysis - %s\n\n", res.GeneratedAt.Format("02 January 2006, 03:04 PM"))
	if err := report.WriteTable(out, res.Records); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if opts.noXLSX {
		return nil
	}

	path, err := (&xlsx.Renderer{Dir: cfg.Runner.OutputDir, Now: func() time.Time { return res.GeneratedAt }}).Render(ctx, res.Records)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("run_id", res.ID).Str("path", path).Msg("report written")
	fmt.Fprintf(out, "\nReport saved to %s\n", path)
	return nil
}

// pickSymbols prefers --symbols, then --symbols-file, then the configured
// file, then the built-in watch list.
func pickSymbols(opts options, cfg config.Config) ([]symbols.Symbol, error) {
	if opts.symbolsCSV != "" {
		syms := symbols.FromCSV(opts.symbolsCSV)
		if len(syms) == 0 {
			return nil, fmt.Errorf("no symbols in %q", opts.symbolsCSV)
		}
		return syms, nil
	}
	for _, path := range []string{opts.symbolsFile, cfg.Runner.SymbolsFile} {
		if path != "" {
			return symbols.Load(path)
		}
	}
	return symbols.Default, nil
}
