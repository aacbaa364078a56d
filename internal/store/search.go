package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// SearchParams defines a message search within one run.
type SearchParams struct {
	RunID string
	// Query matches message texts as a case-insensitive substring, or by
	// Jaro-Winkler similarity when Fuzzy is above zero.
	Query string
	Fuzzy float64
	// Context, when non-nil, restricts hits to one context ("" is the empty context).
	Context *string
	// FilePattern is a glob over reference paths (** and * match any run, ? one char).
	FilePattern string
	Limit       int
	Offset      int
}

// MessageHit is a stored message matched by a search.
type MessageHit struct {
	Context   string
	Text      string
	Plural    string
	HasPlural bool
	Files     []string
	// Score is the similarity to the query for fuzzy searches, 1 otherwise.
	Score float32
}

// SearchOutput wraps search hits with the total count for pagination.
type SearchOutput struct {
	Hits  []*MessageHit
	Total int
}

type hitRow struct {
	id  int64
	hit *MessageHit
}

// SearchMessages finds messages of a run. Hits are ordered by context then
// text, or by descending score for fuzzy searches.
func (s *Store) SearchMessages(params SearchParams) (*SearchOutput, error) {
	if params.RunID == "" {
		return nil, fmt.Errorf("search: run id is required")
	}
	conditions := []string{"m.run_id = ?"}
	args := []any{params.RunID}

	fuzzy := params.Fuzzy > 0 && params.Query != ""
	if params.Query != "" && !fuzzy {
		conditions = append(conditions, `m.text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(params.Query)+"%")
	}
	if params.Context != nil {
		conditions = append(conditions, "m.context = ?")
		args = append(args, *params.Context)
	}
	if params.FilePattern != "" {
		conditions = append(conditions,
			`EXISTS (SELECT 1 FROM message_refs r WHERE r.message_id = m.id AND r.file LIKE ? ESCAPE '\')`)
		args = append(args, globToLike(params.FilePattern))
	}

	query := fmt.Sprintf(`
		SELECT m.id, m.context, m.text, m.plural FROM messages m
		WHERE %s
		ORDER BY m.context, m.text`, strings.Join(conditions, " AND "))
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	var matched []hitRow
	for rows.Next() {
		var id int64
		var plural sql.NullString
		h := &MessageHit{Score: 1}
		if err := rows.Scan(&id, &h.Context, &h.Text, &plural); err != nil {
			rows.Close()
			return nil, err
		}
		h.Plural, h.HasPlural = plural.String, plural.Valid
		matched = append(matched, hitRow{id: id, hit: h})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if fuzzy {
		matched, err = filterFuzzy(matched, params.Query, params.Fuzzy)
		if err != nil {
			return nil, err
		}
	}

	out := &SearchOutput{Total: len(matched)}
	page := paginate(matched, params.Offset, params.Limit)
	for _, m := range page {
		files, err := s.messageFiles(m.id)
		if err != nil {
			return nil, err
		}
		m.hit.Files = files
		out.Hits = append(out.Hits, m.hit)
	}
	return out, nil
}

func filterFuzzy(rows []hitRow, query string, threshold float64) ([]hitRow, error) {
	q := strings.ToLower(query)
	kept := rows[:0]
	for _, r := range rows {
		score, err := edlib.StringsSimilarity(q, strings.ToLower(r.hit.Text), edlib.JaroWinkler)
		if err != nil {
			return nil, fmt.Errorf("similarity: %w", err)
		}
		if float64(score) >= threshold {
			r.hit.Score = score
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].hit.Score > kept[j].hit.Score })
	return kept, nil
}

func paginate(rows []hitRow, offset, limit int) []hitRow {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func (s *Store) messageFiles(id int64) ([]string, error) {
	rows, err := s.q.Query("SELECT file FROM message_refs WHERE message_id=? ORDER BY file", id)
	if err != nil {
		return nil, fmt.Errorf("message refs: %w", err)
	}
	defer rows.Close()
	var files []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// escapeLike escapes LIKE wildcards so s matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// globToLike converts a glob pattern to a SQL LIKE pattern.
func globToLike(pattern string) string {
	result := escapeLike(pattern)
	result = strings.ReplaceAll(result, "**", "%")
	result = strings.ReplaceAll(result, "*", "%")
	result = strings.ReplaceAll(result, "?", "_")
	return result
}
