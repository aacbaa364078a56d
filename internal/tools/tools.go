package tools

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/i18n-extract/internal/pipeline"
	"github.com/DeusData/i18n-extract/internal/store"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp   *mcp.Server
	store *store.Store
	// defaults supply include/exclude, registry, workers and leniency to
	// extract_messages when the caller leaves them out.
	defaults pipeline.Options
	// extractMu serializes extraction runs.
	extractMu sync.Mutex
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(s *store.Store, defaults pipeline.Options) *Server {
	srv := &Server{
		store:    s,
		defaults: defaults,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "i18n-extract",
				Version: Version,
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "extract_messages",
		Description: "Scan a source tree for translation-marker calls (gettext, ngettext, pgettext, npgettext or the configured functions), build the message catalog and save it as a new run. Returns the run id, catalog fingerprint, statistics, per-file failures and the files changed since the previous run of the same base.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"base": {
					"type": "string",
					"description": "Directory to scan. Defaults to the server's configured base."
				},
				"include": {
					"type": "array",
					"items": {"type": "string"},
					"description": "Glob patterns relative to base; only matching files are scanned (e.g. 'src/**')"
				},
				"exclude": {
					"type": "array",
					"items": {"type": "string"},
					"description": "Glob patterns relative to base to skip (e.g. '**/vendor/**')"
				},
				"lenient": {
					"type": "boolean",
					"description": "Extract from files with syntax errors instead of skipping them"
				},
				"git_diff": {
					"type": "string",
					"enum": ["unstaged", "staged", "all", "branch"],
					"description": "Only scan files git reports as changed in this scope. The saved run then covers just those files."
				},
				"git_base": {
					"type": "string",
					"description": "Base branch for git_diff=branch (default main)"
				}
			}
		}`),
	}, s.handleExtractMessages)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "search_messages",
		Description: "Search the messages of a saved run by text substring or fuzzy similarity, optionally restricted to a context or to files matching a glob. Returns each message with its plural form and referencing files.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"run_id": {
					"type": "string",
					"description": "Run to search. Defaults to the latest run of base, or the latest run overall."
				},
				"base": {
					"type": "string",
					"description": "Base directory whose latest run is searched when run_id is omitted"
				},
				"query": {
					"type": "string",
					"description": "Case-insensitive substring of the message text"
				},
				"fuzzy": {
					"type": "number",
					"description": "Jaro-Winkler similarity threshold in (0, 1]; when set, query is matched by similarity instead of substring"
				},
				"context": {
					"type": "string",
					"description": "Only messages in this context (empty string for the empty context)"
				},
				"file_pattern": {
					"type": "string",
					"description": "Glob over referencing files (e.g. '**/checkout/**')"
				},
				"limit": {
					"type": "integer",
					"description": "Max results (default 50, max 200)"
				},
				"offset": {
					"type": "integer",
					"description": "Skip this many results for pagination"
				}
			}
		}`),
	}, s.handleSearchMessages)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_statistics",
		Description: "Return the statistics of a saved run: messages, plurals, usages, contexts, files parsed, files with messages, failures and the per-function usage breakdown.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"run_id": {
					"type": "string",
					"description": "Run to describe. Defaults to the latest run of base, or the latest run overall."
				},
				"base": {
					"type": "string",
					"description": "Base directory whose latest run is described when run_id is omitted"
				}
			}
		}`),
	}, s.handleGetStatistics)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_runs",
		Description: "List saved extraction runs newest first with their id, base, start time, fingerprint and message counts.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"base": {
					"type": "string",
					"description": "Only runs of this base directory"
				},
				"limit": {
					"type": "integer",
					"description": "Max runs (default 20)"
				}
			}
		}`),
	}, s.handleListRuns)
}

// jsonResult marshals data to JSON and returns as tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// getOptionalStringArg distinguishes an absent argument from an empty string.
func getOptionalStringArg(args map[string]any, key string) *string {
	s, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// getStringSliceArg extracts a string array argument; non-string items are dropped.
func getStringSliceArg(args map[string]any, key string) []string {
	items, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// getIntArg extracts an integer argument with a default value.
func getIntArg(args map[string]any, key string, defaultVal int) int {
	v, ok := args[key]
	if !ok {
		return defaultVal
	}
	f, ok := v.(float64) // JSON numbers decode as float64
	if !ok {
		return defaultVal
	}
	return int(f)
}

// getFloatArg extracts a number argument with a default value.
func getFloatArg(args map[string]any, key string, defaultVal float64) float64 {
	f, ok := args[key].(float64)
	if !ok {
		return defaultVal
	}
	return f
}

// getBoolArg extracts a boolean argument from parsed args.
func getBoolArg(args map[string]any, key string) bool {
	v, ok := args[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		return false
	}
	return b
}

// resolveRun picks the run named by run_id, else the latest run of base,
// else the latest run overall.
func (s *Server) resolveRun(args map[string]any) (*store.Run, error) {
	if id := getStringArg(args, "run_id"); id != "" {
		return s.store.GetRun(id)
	}
	base, err := s.absBase(getStringArg(args, "base"), false)
	if err != nil {
		return nil, err
	}
	run, err := s.store.LatestRun(base)
	if err != nil {
		return nil, err
	}
	if run == nil {
		if base != "" {
			return nil, fmt.Errorf("no runs for %s; call extract_messages first", base)
		}
		return nil, fmt.Errorf("no runs saved; call extract_messages first")
	}
	return run, nil
}
