package tools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/i18n-extract/internal/pipeline"
	"github.com/DeusData/i18n-extract/internal/report"
	"github.com/DeusData/i18n-extract/internal/store"
)

// absBase resolves a base argument. With fallback, an empty base becomes the
// configured default; an empty result means "any base".
func (s *Server) absBase(base string, fallback bool) (string, error) {
	if base == "" && fallback {
		base = s.defaults.Base
	}
	if base == "" {
		return "", nil
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	return abs, nil
}

func (s *Server) handleExtractMessages(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	base, err := s.absBase(getStringArg(args, "base"), true)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if base == "" {
		return errResult("base is required"), nil
	}

	opts := s.defaults
	opts.Base = base
	opts.Paths = nil
	if inc := getStringSliceArg(args, "include"); inc != nil {
		opts.Include = inc
	}
	if exc := getStringSliceArg(args, "exclude"); exc != nil {
		opts.Exclude = exc
	}
	if _, ok := args["lenient"]; ok {
		opts.Lenient = getBoolArg(args, "lenient")
	}
	if raw, ok := args["git_diff"]; ok {
		scopeName, _ := raw.(string)
		scope, err := pipeline.ParseDiffScope(scopeName)
		if err != nil {
			return errResult(err.Error()), nil
		}
		if opts.Paths, err = pipeline.ChangedPaths(ctx, base, scope, getStringArg(args, "git_base")); err != nil {
			return errResult(fmt.Sprintf("git diff: %v", err)), nil
		}
	}

	// Lock so concurrent calls do not interleave runs of the same base
	s.extractMu.Lock()
	defer s.extractMu.Unlock()

	prev, err := s.store.LatestRun(base)
	if err != nil {
		return errResult(fmt.Sprintf("load previous run: %v", err)), nil
	}

	res, err := pipeline.Run(ctx, opts)
	if err != nil {
		return errResult(fmt.Sprintf("extraction failed: %v", err)), nil
	}
	run, err := s.store.SaveRun(res)
	if err != nil {
		return errResult(fmt.Sprintf("save run: %v", err)), nil
	}

	changed := []string{}
	if prev != nil {
		hashes, err := s.store.FileHashes(prev.ID)
		if err != nil {
			return errResult(fmt.Sprintf("load file hashes: %v", err)), nil
		}
		if c := store.ChangedFiles(hashes, res); c != nil {
			changed = c
		}
	}
	failures := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, f.Error())
	}
	slog.Info("tools.extract", "run", run.ID, "base", base, "messages", run.Stats.Messages)

	out := map[string]any{
		"run_id":      run.ID,
		"base":        base,
		"fingerprint": run.Fingerprint,
		"stats":       report.StatsJSON(run.Stats),
		"failures":    failures,
		"conflicts":   len(res.Catalog.Conflicts()),
		"skipped":     res.Skipped,
		"elapsed_ms":  res.Elapsed.Milliseconds(),
	}
	if prev != nil {
		out["previous_run_id"] = prev.ID
		out["catalog_changed"] = prev.Fingerprint != run.Fingerprint
		out["changed_files"] = changed
	}
	return jsonResult(out), nil
}
