package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/DeusData/i18n-extract/internal/catalog"
	"github.com/DeusData/i18n-extract/internal/discover"
	"github.com/DeusData/i18n-extract/internal/errors"
	"github.com/DeusData/i18n-extract/internal/extract"
	"github.com/DeusData/i18n-extract/internal/registry"
)

// Options selects the files of a run and how they are read.
type Options struct {
	Base    string
	Include []string
	Exclude []string
	// Paths, when non-nil, replaces directory discovery with an explicit
	// file list. An empty non-nil list extracts nothing.
	Paths []string
	// Workers bounds parallel parsing; 0 means one per CPU.
	Workers  int
	Lenient  bool
	Registry *registry.Registry
}

// Result is the outcome of one run.
type Result struct {
	Base    string
	Catalog *catalog.Catalog
	// Files holds the processed files in discovery order.
	Files []*extract.FileResult
	// Failures holds per-file ParseErrors and FileErrors; those files were skipped.
	Failures []error
	// Skipped counts matched calls rejected for a non-literal text argument.
	Skipped int
	Elapsed time.Duration
}

// Pipeline extracts one catalog from a set of source files.
type Pipeline struct {
	ctx  context.Context
	opts Options
}

// New creates a new Pipeline.
func New(ctx context.Context, opts Options) *Pipeline {
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	if opts.Base == "" {
		opts.Base = "."
	}
	return &Pipeline{ctx: ctx, opts: opts}
}

// checkCancel returns ctx.Err() if the pipeline's context has been cancelled.
func (p *Pipeline) checkCancel() error {
	return p.ctx.Err()
}

// fileOutcome is one slot of the parallel stage.
type fileOutcome struct {
	result *extract.FileResult
	err    error
}

// Run discovers files, extracts them in parallel and merges the results
// into a fresh catalog in discovery order, so the outcome does not depend
// on the worker count. Configuration problems and cancellation abort the
// run; per-file failures are collected in Result.Failures.
func (p *Pipeline) Run() (*Result, error) {
	start := time.Now()
	slog.Info("pipeline.start", "base", p.opts.Base, "functions", p.opts.Registry.Len())

	if err := p.checkCancel(); err != nil {
		return nil, err
	}

	var failures []error
	var files []discover.FileInfo
	if p.opts.Paths != nil {
		var skipped []error
		files, skipped = discover.FromPaths(p.opts.Base, p.opts.Paths)
		failures = append(failures, skipped...)
	} else {
		var err error
		files, err = discover.Discover(p.ctx, p.opts.Base, &discover.Options{
			Include: p.opts.Include,
			Exclude: p.opts.Exclude,
			OnSkip:  func(err error) { failures = append(failures, err) },
		})
		if err != nil {
			return nil, fmt.Errorf("discover: %w", err)
		}
	}
	slog.Info("pipeline.discovered", "files", len(files))

	// Stage 1: Parallel per-file read + parse + visit
	outcomes := make([]fileOutcome, len(files))
	numWorkers := p.opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	g, gctx := errgroup.WithContext(p.ctx)
	g.SetLimit(max(numWorkers, 1))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i].result, outcomes[i].err = p.processFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := p.checkCancel(); err != nil {
		return nil, err
	}

	// Stage 2: Single-writer merge
	res := &Result{Base: p.opts.Base, Catalog: catalog.New()}
	for _, err := range failures {
		slog.Debug("pipeline.file.skip", "err", err)
	}
	for i, o := range outcomes {
		if o.err != nil {
			slog.Debug("pipeline.file.skip", "path", files[i].RelPath, "err", o.err)
			failures = append(failures, o.err)
			continue
		}
		o.result.Apply(res.Catalog)
		res.Files = append(res.Files, o.result)
		res.Skipped += o.result.Skipped
	}
	res.Failures = failures
	res.Elapsed = time.Since(start)

	stats := res.Catalog.Stats()
	slog.Info("pipeline.done",
		"files", stats.FilesParsed,
		"messages", stats.Messages,
		"usages", stats.Usages,
		"failures", len(res.Failures),
		"elapsed", res.Elapsed)
	return res, nil
}

// processFile reads and extracts one file. Errors are per-file.
func (p *Pipeline) processFile(f discover.FileInfo) (*extract.FileResult, error) {
	source, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.NewFileError("read", f.RelPath, err)
	}
	hash := contentHash(source)

	// Strip UTF-8 BOM if present (common in Windows-generated files)
	source = stripBOM(source)

	fr, err := extract.File(f.RelPath, source, p.opts.Registry, extract.Options{Lenient: p.opts.Lenient})
	if err != nil {
		return nil, err
	}
	fr.Hash = hash
	if fr.Recovered {
		slog.Debug("pipeline.file.recovered", "path", f.RelPath)
	}
	return fr, nil
}

// Run is shorthand for New(ctx, opts).Run().
func Run(ctx context.Context, opts Options) (*Result, error) {
	return New(ctx, opts).Run()
}

// stripBOM removes a UTF-8 BOM (0xEF 0xBB 0xBF) from the start of source.
// tree-sitter may choke on BOM bytes.
func stripBOM(source []byte) []byte {
	if len(source) >= 3 && source[0] == 0xEF && source[1] == 0xBB && source[2] == 0xBF {
		return source[3:]
	}
	return source
}

func contentHash(data []byte) string {
	h := xxh3.New()
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
