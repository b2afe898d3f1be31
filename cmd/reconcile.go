package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/loorthu/dna/internal/config"
	"github.com/loorthu/dna/internal/ingest"
	"github.com/loorthu/dna/internal/report"
	"github.com/loorthu/dna/internal/review"
	"github.com/loorthu/dna/internal/store"
	"github.com/loorthu/dna/internal/summarize"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <sg-export.csv> <transcript.csv>",
	Short: "Combine a transcript with a version export into one row per version",
	Long: `Reconcile a dailies meeting transcript against a production-tracking export.
The transcript is segmented into per-version discussions; mentions shorter
than the reference threshold become cross-references on the surrounding
discussion instead of rows of their own. Every exported version gets exactly
one output row, discussed or not.`,
	Args: cobra.ExactArgs(2),
	RunE: runReconcile,
}

var (
	configPath     string
	versionColumns string
	versionPattern string
	refThreshold   int
	output         string
	doSummarize    bool
	storeRun       bool
	storePath      string
	noAsync        bool
	maxConcurrent  int
	maxRetries     int
	rateLimit      int
)

func init() {
	reconcileCmd.Flags().StringVar(&configPath, "config", "", "TOML config file")
	reconcileCmd.Flags().StringVar(&versionColumns, "version-columns", "", "version column names: sgColumn,transcriptColumn")
	reconcileCmd.Flags().StringVar(&versionPattern, "version-pattern", "", `regex extracting version ids (default (\d+))`)
	reconcileCmd.Flags().IntVar(&refThreshold, "reference-threshold", 0, "seconds below which a mention is a reference (default 30)")
	reconcileCmd.Flags().StringVarP(&output, "output", "o", "combined.csv", "output CSV path")
	reconcileCmd.Flags().BoolVar(&doSummarize, "summarize", false, "generate LLM summaries per conversation")
	reconcileCmd.Flags().BoolVar(&storeRun, "store", false, "persist the run to the history database")
	reconcileCmd.Flags().StringVar(&storePath, "store-path", "", "history database path (default ~/.local/share/dna/dna.sqlite)")
	reconcileCmd.Flags().BoolVar(&noAsync, "no-async", false, "disable concurrent summarization")
	reconcileCmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "j", 0, "max concurrent summarization requests")
	reconcileCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "max retries per summarization request")
	reconcileCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "summarization requests per minute")

	rootCmd.AddCommand(reconcileCmd)
}

// loadConfig assembles the effective configuration: defaults, then the
// optional TOML file, then flags. Validation compiles the version pattern, so
// a malformed pattern aborts before any input is read.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if versionColumns != "" {
		parts := strings.Split(versionColumns, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("--version-columns must be two comma-separated names, got %q", versionColumns)
		}
		cfg.Reconcile.SGVersionColumn = strings.TrimSpace(parts[0])
		cfg.Reconcile.TranscriptVersionColumn = strings.TrimSpace(parts[1])
	}
	if versionPattern != "" {
		cfg.Reconcile.VersionPattern = versionPattern
	}
	if refThreshold > 0 {
		cfg.Reconcile.ReferenceThreshold = refThreshold
	}
	if maxConcurrent > 0 {
		cfg.Summarize.MaxConcurrent = maxConcurrent
	}
	if maxRetries > 0 {
		cfg.Summarize.MaxRetries = maxRetries
	}
	if rateLimit > 0 {
		cfg.Summarize.RateLimitPerMin = rateLimit
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	sgFile, transcriptFile := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	extractor := review.NewExtractor(cfg.Pattern())

	slog.Info("loading version export", "file", sgFile)
	known, err := ingest.LoadKnownVersions(sgFile, cfg.Reconcile.SGVersionColumn, extractor)
	if err != nil {
		return err
	}
	slog.Info("loaded known versions", "count", len(known))

	slog.Info("loading transcript", "file", transcriptFile)
	events, err := ingest.LoadTranscript(transcriptFile, cfg.Reconcile.TranscriptVersionColumn, extractor)
	if err != nil {
		return err
	}
	slog.Info("loaded transcript events", "count", len(events))

	res := review.Reconcile(events, known, cfg.Reconcile.ReferenceThreshold)

	// Graceful cancellation only matters once we start talking to providers.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		summaries     summarize.Summaries
		providerNames []string
	)
	if doSummarize {
		registry := summarize.NewRegistry(cfg.Providers, cfg.Summarize.Prompt)
		if registry.Empty() {
			return fmt.Errorf("--summarize requires at least one enabled provider in the config")
		}
		providerNames = registry.Names()

		summaries, err = summarize.Run(ctx, res.Rows, registry, summarize.Options{
			MaxConcurrent:   cfg.Summarize.MaxConcurrent,
			MaxRetries:      cfg.Summarize.MaxRetries,
			RateLimitPerMin: cfg.Summarize.RateLimitPerMin,
			NoAsync:         noAsync,
		})
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
	}

	if err := report.WriteCSV(output, res.Rows, providerNames, summaries); err != nil {
		return err
	}
	slog.Info("combined CSV written", "path", output, "rows", len(res.Rows))

	if storeRun {
		path := storePath
		if path == "" {
			path = store.DefaultPath()
		}
		st, err := store.Open(path)
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := st.SaveRun(store.Run{
			SGFile:             sgFile,
			TranscriptFile:     transcriptFile,
			VersionPattern:     cfg.Reconcile.VersionPattern,
			ReferenceThreshold: cfg.Reconcile.ReferenceThreshold,
		}, res.Rows)
		if err != nil {
			return fmt.Errorf("store run: %w", err)
		}
		slog.Info("run stored", "id", id, "path", path)
	}

	report.Summarize(res).Log(cfg.Reconcile.ReferenceThreshold)

	if !quiet {
		slog.Info("done")
	}
	return nil
}
