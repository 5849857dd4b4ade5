package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/authscope/authscope-cli/api/schemas"
	"github.com/authscope/authscope-cli/internal/config"
	"github.com/authscope/authscope-cli/internal/detect"
	"github.com/authscope/authscope-cli/internal/fetch"
	"github.com/authscope/authscope-cli/internal/history"
	"github.com/authscope/authscope-cli/internal/htmldoc"
	"github.com/authscope/authscope-cli/internal/observability"
	"github.com/authscope/authscope-cli/internal/reporting"
)

// newDetectCmd creates and configures the `detect` command.
func newDetectCmd() *cobra.Command {
	detectCmd := &cobra.Command{
		Use:   "detect [targets...]",
		Short: "Analyzes web pages for credential-entry surfaces",
		Long: `Fetches each target URL (or reads local HTML with --file, "-" for
stdin) and reports whether the page contains a login/signup surface, which
inputs compose it, and the best bounding container.`,
		Args: cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their Viper keys so command-line flags override
			// values from the config file and environment.
			if err := viper.BindPFlag("detector.mode", cmd.Flags().Lookup("mode")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the context passed from Execute (signal-aware).
			ctx := cmd.Context()
			logger := observability.GetLogger()

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config with flag overrides: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			cfg.Scan.Targets = args
			cfg.Scan.File = viper.GetString("file")
			cfg.Scan.Output = viper.GetString("output")
			cfg.Scan.Format = viper.GetString("format")
			cfg.Scan.Concurrency = viper.GetInt("concurrency")
			cfg.Scan.NoHistory = viper.GetBool("no-history")

			if len(cfg.Scan.Targets) == 0 && cfg.Scan.File == "" {
				return fmt.Errorf("nothing to analyze: pass target URLs or --file")
			}
			if cfg.Scan.Concurrency <= 0 {
				cfg.Scan.Concurrency = 4
			}

			reporter, err := reporting.New(cfg.Scan.Format, cfg.Scan.Output)
			if err != nil {
				return err
			}

			runner, err := newDetectRunner(cfg, logger)
			if err != nil {
				return err
			}

			envelopes, err := runner.run(ctx, cfg.Scan)
			if err != nil {
				return err
			}

			for _, env := range envelopes {
				if err := reporter.Write(env); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
			}
			if err := reporter.Close(); err != nil {
				return fmt.Errorf("failed to finalize report: %w", err)
			}

			logger.Info("Detection complete",
				zap.Int("targets", len(envelopes)),
				zap.String("mode", cfg.Detector.Mode),
			)
			return nil
		},
	}

	detectCmd.Flags().StringP("file", "i", "", `Analyze a local HTML file instead of fetching ("-" reads stdin).`)
	detectCmd.Flags().StringP("output", "o", "", "Output file path for the report. Defaults to stdout.")
	detectCmd.Flags().StringP("format", "f", "text", "Report format ('text' or 'json').")
	detectCmd.Flags().String("mode", "permissive", "Detection strictness ('permissive' or 'strict'). (Overrides config/env)")
	detectCmd.Flags().IntP("concurrency", "j", 4, "Number of targets fetched in parallel.")
	detectCmd.Flags().Bool("no-history", false, "Do not record targets in the URL history.")

	return detectCmd
}

// detectRunner holds the initialized services for one detect invocation.
type detectRunner struct {
	detector *detect.Detector
	fetcher  *fetch.Fetcher
	history  *history.Store
	log      *zap.Logger
}

func newDetectRunner(cfg config.Config, logger *zap.Logger) (*detectRunner, error) {
	hist, err := history.NewStore(cfg.History, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	return &detectRunner{
		detector: detect.New(cfg.Detector, logger),
		fetcher:  fetch.New(cfg.Fetcher, logger),
		history:  hist,
		log:      logger.Named("detect-cmd"),
	}, nil
}

// run analyzes every target, URLs in parallel, and returns the envelopes in
// input order.
func (r *detectRunner) run(ctx context.Context, scan config.ScanConfig) ([]*schemas.DetectionEnvelope, error) {
	var envelopes []*schemas.DetectionEnvelope

	if scan.File != "" {
		env, err := r.runFile(scan.File)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, env)
	}

	if len(scan.Targets) > 0 {
		urlEnvs := make([]*schemas.DetectionEnvelope, len(scan.Targets))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(scan.Concurrency)
		for i, target := range scan.Targets {
			i, target := i, target
			g.Go(func() error {
				urlEnvs[i] = r.runURL(gctx, normalizeTarget(target))
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		envelopes = append(envelopes, urlEnvs...)
	}

	if !scan.NoHistory {
		for _, target := range scan.Targets {
			if _, err := r.history.Record(normalizeTarget(target)); err != nil {
				// History is a convenience; a failed write never fails a scan.
				r.log.Warn("failed to record history entry", zap.Error(err))
			}
		}
	}

	return envelopes, nil
}

// runURL fetches and analyzes one target. Fetch failures still produce an
// envelope: the report is data, never an exception.
func (r *detectRunner) runURL(ctx context.Context, target string) *schemas.DetectionEnvelope {
	env := &schemas.DetectionEnvelope{
		DetectionID: uuid.New().String(),
		Target:      target,
		Mode:        r.detector.Mode(),
	}

	res, err := r.fetcher.Fetch(ctx, target)
	if err != nil {
		r.log.Warn("fetch failed", zap.String("target", target), zap.Error(err))
		env.FetchError = err.Error()
	} else {
		env.FetchStatus = res.Status
		env.Form = r.detector.Detect(res.HTML)
	}

	finishEnvelope(env)
	return env
}

// runFile analyzes a local HTML file, or stdin for "-".
func (r *detectRunner) runFile(path string) (*schemas.DetectionEnvelope, error) {
	var (
		markup []byte
		err    error
		target string
	)
	if path == "-" {
		markup, err = io.ReadAll(os.Stdin)
		target = "stdin"
	} else {
		markup, err = os.ReadFile(path)
		target = path
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}

	env := &schemas.DetectionEnvelope{
		DetectionID: uuid.New().String(),
		Target:      target,
		Mode:        r.detector.Mode(),
		Form:        r.detector.Detect(string(markup)),
	}
	finishEnvelope(env)
	return env, nil
}

// finishEnvelope stamps the envelope and derives its presentation fields.
func finishEnvelope(env *schemas.DetectionEnvelope) {
	env.DetectedAt = time.Now().UTC()
	env.Summary = detect.Summary(env.Form)
	if env.Form.ParentElement != "" {
		env.Excerpt = htmldoc.Indent(env.Form.ParentElement)
	}
}

// normalizeTarget ensures the target carries a scheme so the fetcher can
// dial it.
func normalizeTarget(target string) string {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return "https://" + target
	}
	return target
}

func init() {
	rootCmd.AddCommand(newDetectCmd())
}
