package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/i18n-extract/internal/report"
	"github.com/DeusData/i18n-extract/internal/store"
)

type runInfo struct {
	ID          string `json:"id"`
	Base        string `json:"base"`
	StartedAt   string `json:"started_at"`
	Fingerprint string `json:"fingerprint"`
	Messages    int    `json:"messages"`
	Usages      int    `json:"usages"`
	FilesParsed int    `json:"files_parsed"`
	Failures    int    `json:"failures"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

func newRunInfo(r *store.Run) runInfo {
	return runInfo{
		ID:          r.ID,
		Base:        r.Base,
		StartedAt:   r.StartedAt,
		Fingerprint: r.Fingerprint,
		Messages:    r.Stats.Messages,
		Usages:      r.Stats.Usages,
		FilesParsed: r.Stats.FilesParsed,
		Failures:    r.Failures,
		ElapsedMS:   r.Elapsed.Milliseconds(),
	}
}

func (s *Server) handleListRuns(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	base, err := s.absBase(getStringArg(args, "base"), false)
	if err != nil {
		return errResult(err.Error()), nil
	}
	runs, err := s.store.ListRuns(base, getIntArg(args, "limit", 20))
	if err != nil {
		return errResult(fmt.Sprintf("list runs: %v", err)), nil
	}
	result := make([]runInfo, 0, len(runs))
	for _, r := range runs {
		result = append(result, newRunInfo(r))
	}
	return jsonResult(result), nil
}

func (s *Server) handleGetStatistics(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	run, err := s.resolveRun(args)
	if err != nil {
		return errResult(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"run":   newRunInfo(run),
		"stats": report.StatsJSON(run.Stats),
	}), nil
}

type messageInfo struct {
	Context string   `json:"context"`
	Text    string   `json:"text"`
	Plural  *string  `json:"plural,omitempty"`
	Files   []string `json:"files"`
	Score   float32  `json:"score,omitempty"`
}

func (s *Server) handleSearchMessages(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	run, err := s.resolveRun(args)
	if err != nil {
		return errResult(err.Error()), nil
	}

	limit := getIntArg(args, "limit", 50)
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	fuzzy := getFloatArg(args, "fuzzy", 0)
	if fuzzy < 0 || fuzzy > 1 {
		return errResult("fuzzy must be between 0 and 1"), nil
	}

	out, err := s.store.SearchMessages(store.SearchParams{
		RunID:       run.ID,
		Query:       getStringArg(args, "query"),
		Fuzzy:       fuzzy,
		Context:     getOptionalStringArg(args, "context"),
		FilePattern: getStringArg(args, "file_pattern"),
		Limit:       limit,
		Offset:      getIntArg(args, "offset", 0),
	})
	if err != nil {
		return errResult(fmt.Sprintf("search failed: %v", err)), nil
	}

	hits := make([]messageInfo, 0, len(out.Hits))
	for _, h := range out.Hits {
		mi := messageInfo{Context: h.Context, Text: h.Text, Files: h.Files}
		if h.HasPlural {
			p := h.Plural
			mi.Plural = &p
		}
		if fuzzy > 0 {
			mi.Score = h.Score
		}
		hits = append(hits, mi)
	}
	return jsonResult(map[string]any{
		"run_id":   run.ID,
		"total":    out.Total,
		"messages": hits,
	}), nil
}
