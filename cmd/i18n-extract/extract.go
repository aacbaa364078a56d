package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/DeusData/i18n-extract/internal/config"
	"github.com/DeusData/i18n-extract/internal/errors"
	"github.com/DeusData/i18n-extract/internal/pipeline"
	"github.com/DeusData/i18n-extract/internal/registry"
	"github.com/DeusData/i18n-extract/internal/report"
	"github.com/DeusData/i18n-extract/internal/store"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	base := c.String("base")
	configPath := c.String("config")

	// Without --config, look for a default config file in the base directory
	if configPath == "" {
		dir := base
		if dir == "" {
			dir = "."
		}
		configPath = config.Find(dir)
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		slog.Debug("config.loaded", "path", configPath)
	}

	// Apply CLI flag overrides
	if base != "" {
		cfg.Base = base
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if functions := c.String("functions"); functions != "" {
		reg, err := registry.Load(functions)
		if err != nil {
			return nil, err
		}
		cfg.Functions = reg.Table()
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("lenient") {
		cfg.Lenient = c.Bool("lenient")
	}
	if db := c.String("db"); db != "" {
		cfg.Database = db
	}
	if metricsFile := c.String("metrics-file"); metricsFile != "" {
		cfg.MetricsFile = metricsFile
	}
	if c.IsSet("similar") {
		cfg.Similarity = c.Float64("similar")
	}

	// Convert to absolute path to ensure consistent run records
	absBase, err := filepath.Abs(cfg.Base)
	if err != nil {
		return nil, errors.NewConfigError("base", cfg.Base, err)
	}
	cfg.Base = absBase
	if st, err := os.Stat(cfg.Base); err != nil {
		return nil, errors.NewConfigError("base", cfg.Base, err)
	} else if !st.IsDir() {
		return nil, errors.NewConfigError("base", cfg.Base, fmt.Errorf("not a directory"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// pipelineOptions translates a validated config into pipeline options.
func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Base:     cfg.Base,
		Include:  cfg.Include,
		Exclude:  cfg.Exclude,
		Workers:  cfg.Workers,
		Lenient:  cfg.Lenient,
		Registry: reg,
	}, nil
}

func extractCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}
	if c.IsSet("git-diff") {
		scope, err := pipeline.ParseDiffScope(c.String("git-diff"))
		if err != nil {
			return err
		}
		if opts.Paths, err = pipeline.ChangedPaths(c.Context, cfg.Base, scope, c.String("git-base")); err != nil {
			return err
		}
	}

	res, err := pipeline.Run(c.Context, opts)
	if err != nil {
		return err
	}
	if err := res.Catalog.Verify(); err != nil {
		return fmt.Errorf("catalog verification failed: %w", err)
	}

	if err := printResult(c.App.Writer, c.App.ErrWriter, cfg, res, c.Bool("json")); err != nil {
		return err
	}

	rec, err := newRecorder(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()
	return rec.Record(res)
}

// printResult writes the summary (or JSON) to out and warnings to errOut.
func printResult(out, errOut io.Writer, cfg *config.Config, res *pipeline.Result, asJSON bool) error {
	var err error
	if asJSON {
		err = report.WriteJSON(out, cfg.Base, res.Catalog, res.Failures)
	} else {
		err = report.Summary(out, res.Catalog.Stats())
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	var similar []report.SimilarPair
	if cfg.Similarity > 0 {
		similar = report.Similar(res.Catalog, cfg.Similarity)
	}
	return report.Warnings(errOut, res.Failures, res.Catalog.Conflicts(), similar)
}

// recorder persists runs to the database and metrics textfile a config names.
type recorder struct {
	store       *store.Store
	metrics     *report.Metrics
	metricsFile string
}

func newRecorder(cfg *config.Config) (*recorder, error) {
	rec := &recorder{metricsFile: cfg.MetricsFile}
	if cfg.Database != "" {
		st, err := store.OpenPath(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		rec.store = st
	}
	if cfg.MetricsFile != "" {
		rec.metrics = report.NewMetrics()
	}
	return rec, nil
}

// Record saves res and refreshes the metrics textfile.
func (r *recorder) Record(res *pipeline.Result) error {
	if r.store != nil {
		prev, err := r.store.LatestRun(res.Base)
		if err != nil {
			return fmt.Errorf("load previous run: %w", err)
		}
		run, err := r.store.SaveRun(res)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		attrs := []any{"run", run.ID, "messages", run.Stats.Messages}
		if prev != nil {
			hashes, err := r.store.FileHashes(prev.ID)
			if err != nil {
				return fmt.Errorf("load file hashes: %w", err)
			}
			attrs = append(attrs,
				"changed_files", len(store.ChangedFiles(hashes, res)),
				"catalog_changed", prev.Fingerprint != run.Fingerprint)
		}
		slog.Info("store.saved", attrs...)
	}
	if r.metrics != nil {
		r.metrics.Observe(res.Catalog.Stats(), len(res.Failures), res.Elapsed.Seconds())
		if err := r.metrics.WriteTextfile(r.metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func (r *recorder) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

func functionsCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	return writeTable(c.App.Writer, reg.Table())
}

func writeTable(w io.Writer, table registry.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(table); err != nil {
		return err
	}
	return enc.Close()
}
