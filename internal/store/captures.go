package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/memri-app/memri/internal/capture"
)

// PersistBatch inserts the parent capture row and every child window row in
// a single transaction, then runs a best-effort prune. A prune failure
// never fails the write.
func (s *Store) PersistBatch(ctx context.Context, batch capture.CaptureBatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`INSERT INTO captures (frame_number, timestamp_ms) VALUES (?, ?)`,
		batch.FrameNumber, batch.TimestampMs)
	if err != nil {
		return fmt.Errorf("insert capture: %w", err)
	}
	captureID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("capture id: %w", err)
	}

	for _, rec := range batch.Records {
		var confidence sql.NullFloat64
		if rec.Confidence != nil {
			confidence = sql.NullFloat64{Float64: float64(*rec.Confidence), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO captured_windows
				(capture_id, window_name, app_name, text, confidence, ocr_json, image_path, browser_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			captureID, rec.WindowName, rec.AppName, rec.Text, confidence,
			nullString(rec.OCRJSON), nullString(rec.ImagePath), nullString(rec.BrowserURL),
		); err != nil {
			return fmt.Errorf("insert window: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	if err := s.prune(ctx); err != nil {
		// Best-effort: pruning failure never fails the batch.
		_ = err
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CaptureMetadata is one captures row joined with its windows, with image
// bytes omitted.
type CaptureMetadata struct {
	ID          int64
	FrameNumber int64
	TimestampMs int64
	Windows     []WindowMetadata
}

// WindowMetadata mirrors captured_windows minus image_base64/image bytes.
type WindowMetadata struct {
	ID         int64
	WindowName string
	AppName    string
	Text       string
	Confidence *float32
	OCRJSON    string
	ImagePath  string
	BrowserURL string
	ArchiveURL string
}

// FetchCapturesMetadata returns the most recent limit captures, newest
// first, each joined with its windows. image_base64 is never populated
// here; it's the fast path for list views.
func (s *Store) FetchCapturesMetadata(ctx context.Context, limit int) ([]CaptureMetadata, error) {
	if limit < 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, frame_number, timestamp_ms FROM captures
		ORDER BY timestamp_ms DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query captures: %w", err)
	}
	defer rows.Close()

	var metas []CaptureMetadata
	ids := make([]int64, 0, limit)
	byID := make(map[int64]*CaptureMetadata)
	for rows.Next() {
		var m CaptureMetadata
		if err := rows.Scan(&m.ID, &m.FrameNumber, &m.TimestampMs); err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		metas = append(metas, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range metas {
		byID[metas[i].ID] = &metas[i]
	}

	if len(ids) == 0 {
		return metas, nil
	}

	windowRows, err := s.queryWindowsForCaptures(ctx, ids)
	if err != nil {
		return nil, err
	}
	defer windowRows.Close()

	for windowRows.Next() {
		captureID, w, err := scanWindowRow(windowRows)
		if err != nil {
			return nil, err
		}
		if m, ok := byID[captureID]; ok {
			m.Windows = append(m.Windows, w)
		}
	}
	return metas, windowRows.Err()
}

// scanWindowRow scans one row of the shape produced by
// queryWindowsForCaptures: capture_id, id, window_name, app_name, text,
// confidence, ocr_json, image_path, browser_url, archive_url.
func scanWindowRow(rows *sql.Rows) (int64, WindowMetadata, error) {
	var captureID int64
	var w WindowMetadata
	var confidence sql.NullFloat64
	var ocrJSON, imagePath, browserURL, archiveURL sql.NullString
	if err := rows.Scan(&captureID, &w.ID, &w.WindowName, &w.AppName, &w.Text,
		&confidence, &ocrJSON, &imagePath, &browserURL, &archiveURL); err != nil {
		return 0, WindowMetadata{}, fmt.Errorf("scan window: %w", err)
	}
	if confidence.Valid {
		c := float32(confidence.Float64)
		w.Confidence = &c
	}
	w.OCRJSON = ocrJSON.String
	w.ImagePath = imagePath.String
	w.BrowserURL = browserURL.String
	w.ArchiveURL = archiveURL.String
	return captureID, w, nil
}

func (s *Store) queryWindowsForCaptures(ctx context.Context, ids []int64) (*sql.Rows, error) {
	placeholders, args := inClause(ids)
	query := `
		SELECT capture_id, id, window_name, app_name, text, confidence, ocr_json, image_path, browser_url, archive_url
		FROM captured_windows WHERE capture_id IN (` + placeholders + `)`
	return s.db.QueryContext(ctx, query, args...)
}

// FetchImagesForCaptures returns capture_id → base64-encoded PNG bytes for
// every window row among ids whose image_path still exists on disk. Rows
// with a missing file are omitted, not errored.
func (s *Store) FetchImagesForCaptures(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}
	placeholders, args := inClause(ids)
	query := `SELECT capture_id, image_path FROM captured_windows
		WHERE capture_id IN (` + placeholders + `) AND image_path IS NOT NULL`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var captureID int64
		var path string
		if err := rows.Scan(&captureID, &path); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		out[captureID] = base64.StdEncoding.EncodeToString(data)
	}
	return out, rows.Err()
}

// UpdateArchiveURL best-effort-sets archive_url for the window row whose
// image_path matches. Used by the archive hand-off after an upload
// completes; failures are logged by the caller, not surfaced here as fatal.
func (s *Store) UpdateArchiveURL(ctx context.Context, imagePath, archiveURL string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE captured_windows SET archive_url = ? WHERE image_path = ?`,
		archiveURL, imagePath)
	return err
}

func inClause(ids []int64) (string, []any) {
	placeholders := ""
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = id
	}
	return placeholders, args
}
