package store

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/DeusData/i18n-extract/internal/catalog"
	"github.com/DeusData/i18n-extract/internal/pipeline"
)

// Run is one saved extraction run.
type Run struct {
	ID          string
	Base        string
	Fingerprint string
	StartedAt   string
	Elapsed     time.Duration
	Failures    int
	Stats       catalog.Stats
}

// SaveRun stores a pipeline result with its messages, references, usage
// breakdown and file hashes under a fresh run id.
func (s *Store) SaveRun(res *pipeline.Result) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		Base:        res.Base,
		Fingerprint: res.Catalog.Fingerprint(),
		StartedAt:   Now(),
		Elapsed:     res.Elapsed,
		Failures:    len(res.Failures),
		Stats:       res.Catalog.Stats(),
	}
	err := s.WithTransaction(func(tx *Store) error {
		st := run.Stats
		if _, err := tx.q.Exec(`
			INSERT INTO runs (id, base, fingerprint, started_at, elapsed_ms, messages, plurals, usages,
				contexts, files_parsed, files_with_messages, failures)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Base, run.Fingerprint, run.StartedAt, run.Elapsed.Milliseconds(),
			st.Messages, st.Plurals, st.Usages, st.Contexts, st.FilesParsed, st.FilesWithMessages,
			run.Failures); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for _, m := range res.Catalog.Messages() {
			if err := tx.insertMessage(run.ID, &m); err != nil {
				return err
			}
		}
		for fn, n := range st.UsageBreakdown {
			if _, err := tx.q.Exec("INSERT INTO usage (run_id, function, count) VALUES (?, ?, ?)", run.ID, fn, n); err != nil {
				return fmt.Errorf("insert usage: %w", err)
			}
		}
		for _, f := range res.Files {
			if _, err := tx.q.Exec("INSERT INTO files (run_id, path, language, hash) VALUES (?, ?, ?, ?)",
				run.ID, f.Path, string(f.Language), f.Hash); err != nil {
				return fmt.Errorf("insert file: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) insertMessage(runID string, m *catalog.Message) error {
	var plural sql.NullString
	if m.HasPlural {
		plural = sql.NullString{String: m.Plural, Valid: true}
	}
	r, err := s.q.Exec("INSERT INTO messages (run_id, context, text, plural) VALUES (?, ?, ?, ?)",
		runID, m.Context, m.Text, plural)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return err
	}
	for _, file := range m.Files() {
		if _, err := s.q.Exec("INSERT INTO message_refs (message_id, file) VALUES (?, ?)", id, file); err != nil {
			return fmt.Errorf("insert ref: %w", err)
		}
	}
	return nil
}

const runColumns = `id, base, fingerprint, started_at, elapsed_ms, messages, plurals, usages,
	contexts, files_parsed, files_with_messages, failures`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	var elapsedMS int64
	err := row.Scan(&r.ID, &r.Base, &r.Fingerprint, &r.StartedAt, &elapsedMS,
		&r.Stats.Messages, &r.Stats.Plurals, &r.Stats.Usages, &r.Stats.Contexts,
		&r.Stats.FilesParsed, &r.Stats.FilesWithMessages, &r.Failures)
	if err != nil {
		return nil, err
	}
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return &r, nil
}

// GetRun returns a run with its usage breakdown.
func (s *Store) GetRun(id string) (*Run, error) {
	r, err := scanRun(s.q.QueryRow("SELECT "+runColumns+" FROM runs WHERE id=?", id))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	if err := s.loadUsage(r); err != nil {
		return nil, err
	}
	return r, nil
}

// LatestRun returns the most recently saved run for base, or for any base
// when base is empty. It returns nil when there is none.
func (s *Store) LatestRun(base string) (*Run, error) {
	runs, err := s.ListRuns(base, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	r := runs[0]
	if err := s.loadUsage(r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRuns returns saved runs newest first, optionally restricted to base.
// A limit of 0 or less returns all of them. The usage breakdown is not loaded.
func (s *Store) ListRuns(base string, limit int) ([]*Run, error) {
	query := "SELECT " + runColumns + " FROM runs"
	var args []any
	if base != "" {
		query += " WHERE base=?"
		args = append(args, base)
	}
	query += " ORDER BY rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var result []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) loadUsage(r *Run) error {
	rows, err := s.q.Query("SELECT function, count FROM usage WHERE run_id=?", r.ID)
	if err != nil {
		return fmt.Errorf("load usage: %w", err)
	}
	defer rows.Close()
	r.Stats.UsageBreakdown = make(map[string]int)
	for rows.Next() {
		var fn string
		var n int
		if err := rows.Scan(&fn, &n); err != nil {
			return err
		}
		r.Stats.UsageBreakdown[fn] = n
	}
	return rows.Err()
}

// DeleteRun deletes a run and everything recorded for it (CASCADE).
func (s *Store) DeleteRun(id string) error {
	_, err := s.q.Exec("DELETE FROM runs WHERE id=?", id)
	return err
}

// Prune keeps the newest keep runs of base and deletes the rest.
func (s *Store) Prune(base string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	r, err := s.q.Exec(`
		DELETE FROM runs WHERE base=? AND id NOT IN (
			SELECT id FROM runs WHERE base=? ORDER BY rowid DESC LIMIT ?)`,
		base, base, keep)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	n, err := r.RowsAffected()
	return int(n), err
}

// FileHashes returns the content hash of every file parsed by a run.
func (s *Store) FileHashes(runID string) (map[string]string, error) {
	rows, err := s.q.Query("SELECT path, hash FROM files WHERE run_id=?", runID)
	if err != nil {
		return nil, fmt.Errorf("get file hashes: %w", err)
	}
	defer rows.Close()
	result := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, err
		}
		result[path] = hash
	}
	return result, rows.Err()
}

// ChangedFiles lists, sorted, the files of res that are new or whose hash
// differs from prev, plus the files of prev that res no longer parsed.
func ChangedFiles(prev map[string]string, res *pipeline.Result) []string {
	seen := make(map[string]bool, len(res.Files))
	var changed []string
	for _, f := range res.Files {
		seen[f.Path] = true
		if h, ok := prev[f.Path]; !ok || h != f.Hash {
			changed = append(changed, f.Path)
		}
	}
	for path := range prev {
		if !seen[path] {
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)
	return changed
}
