package store

import (
	"context"
	"fmt"
	"strings"
)

// SearchCaptures splits query on whitespace into lowercased terms longer
// than one character, OR-combines a case-insensitive substring match of
// each term against text/window_name/app_name/browser_url, optionally
// restricts by [startMs, endMs], orders newest first, and returns distinct
// capture metadata (no images).
func (s *Store) SearchCaptures(ctx context.Context, query string, startMs, endMs *int64, limit int) ([]CaptureMetadata, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	terms := searchTerms(query)

	var where []string
	var args []any

	if len(terms) > 0 {
		var clauses []string
		for _, term := range terms {
			pattern := "%" + term + "%"
			clauses = append(clauses,
				`(LOWER(cw.text) LIKE ? OR LOWER(cw.window_name) LIKE ? OR LOWER(cw.app_name) LIKE ? OR LOWER(cw.browser_url) LIKE ?)`)
			args = append(args, pattern, pattern, pattern, pattern)
		}
		where = append(where, "("+strings.Join(clauses, " OR ")+")")
	}

	if startMs != nil {
		where = append(where, "c.timestamp_ms >= ?")
		args = append(args, *startMs)
	}
	if endMs != nil {
		where = append(where, "c.timestamp_ms <= ?")
		args = append(args, *endMs)
	}

	query2 := `
		SELECT DISTINCT c.id, c.frame_number, c.timestamp_ms
		FROM captures c
		LEFT JOIN captured_windows cw ON cw.capture_id = c.id`
	if len(where) > 0 {
		query2 += " WHERE " + strings.Join(where, " AND ")
	}
	query2 += " ORDER BY c.timestamp_ms DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query2, args...)
	if err != nil {
		return nil, fmt.Errorf("search captures: %w", err)
	}
	defer rows.Close()

	var out []CaptureMetadata
	var ids []int64
	for rows.Next() {
		var m CaptureMetadata
		if err := rows.Scan(&m.ID, &m.FrameNumber, &m.TimestampMs); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		out = append(out, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	return s.attachWindows(ctx, out, ids)
}

func (s *Store) attachWindows(ctx context.Context, metas []CaptureMetadata, ids []int64) ([]CaptureMetadata, error) {
	byID := make(map[int64]*CaptureMetadata, len(metas))
	for i := range metas {
		byID[metas[i].ID] = &metas[i]
	}

	rows, err := s.queryWindowsForCaptures(ctx, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		captureID, w, err := scanWindowRow(rows)
		if err != nil {
			return nil, err
		}
		if m, ok := byID[captureID]; ok {
			m.Windows = append(m.Windows, w)
		}
	}
	return metas, rows.Err()
}

// searchTerms splits query on whitespace, lowercases, and keeps terms
// longer than one character.
func searchTerms(query string) []string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 1 {
			terms = append(terms, strings.ToLower(f))
		}
	}
	return terms
}
