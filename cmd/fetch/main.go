package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"stockanalyzer/internal/app"
	"stockanalyzer/internal/config"
	"stockanalyzer/internal/logger"
	"stockanalyzer/internal/provider"
	"stockanalyzer/internal/symbols"
)

// answer is one provider's answer for one symbol.
type answer struct {
	Provider string          `json:"provider"`
	Symbol   string          `json:"symbol"`
	Quote    *provider.Quote `json:"quote,omitempty"`
	Usable   bool            `json:"usable"`
	Error    string          `json:"error,omitempty"`
}

func main() {
	var (
		configPath string
		symbolsCSV string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Query every enabled provider directly and print the normalized quotes",
		Long: `Fetch bypasses the resolver and asks each enabled provider for every
symbol in parallel, printing what each one returned. Useful for checking
which upstream is currently answering.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg.Logging.ServiceName = "fetch"
			log, err := logger.Init(cfg.Logging)
			if err != nil {
				return err
			}
			syms := symbols.FromCSV(symbolsCSV)
			if len(syms) == 0 {
				return fmt.Errorf("no symbols provided")
			}
			ps := app.NewProviders(cfg, log).All()
			if len(ps) == 0 {
				return fmt.Errorf("no providers enabled")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			answers, runErr := fetchAll(ctx, ps, syms, log)
			if err := writeAnswers(cmd.OutOrStdout(), answers); err != nil {
				return err
			}
			if runErr != nil {
				return fmt.Errorf("fetch cut short: %w", runErr)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.toml")
	f.StringVarP(&symbolsCSV, "symbols", "s", "RELIANCE", "comma-separated tickers")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// fetchAll fans out one goroutine per provider; symbols are asked in order
// so each provider's own rate limit still applies. Once ctx is done a
// provider stops asking, marks its remaining symbols and reports ctx.Err().
func fetchAll(ctx context.Context, ps []provider.Provider, syms []symbols.Symbol, log zerolog.Logger) ([]answer, error) {
	out := make([]answer, len(ps)*len(syms))
	var g errgroup.Group
	for i, p := range ps {
		g.Go(func() error {
			for j, s := range syms {
				a := answer{Provider: p.Name(), Symbol: s.Ticker}
				if err := ctx.Err(); err != nil {
					for k := j; k < len(syms); k++ {
						out[i*len(syms)+k] = answer{Provider: a.Provider, Symbol: syms[k].Ticker, Error: err.Error()}
					}
					return fmt.Errorf("%s: %w", a.Provider, err)
				}
				q, err := p.Fetch(ctx, s.Ticker)
				if err != nil {
					a.Error = err.Error()
					log.Warn().Err(err).Str("provider", a.Provider).Str("symbol", s.Ticker).Msg("fetch failed")
				} else {
					a.Quote = &q
					a.Usable = q.Usable()
				}
				out[i*len(syms)+j] = a
			}
			return nil
		})
	}
	return out, g.Wait()
}

func writeAnswers(w io.Writer, answers []answer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(struct {
		Answers []answer `json:"answers"`
	}{answers})
}
