package store

import (
	"context"
	"time"
)

const msPerDay = 86_400_000

// RetentionPolicy configures prune; zero disables each rule.
type RetentionPolicy struct {
	RetentionDays int
	MaxCaptures   int
}

// SetRetentionPolicy records the policy PersistBatch's best-effort prune
// step applies after every write. Safe to call while capture loops are
// running (e.g. from a config hot-reload): the policy is read atomically
// by prune, which multiple monitor loops may call concurrently.
func (s *Store) SetRetentionPolicy(p RetentionPolicy) {
	s.retention.Store(&p)
}

// prune deletes captures older than RetentionDays (if set) and trims down
// to MaxCaptures (if set), oldest first. Child rows cascade via FK. Called
// after every committed batch; failures here never fail the batch.
func (s *Store) prune(ctx context.Context) error {
	p := s.retention.Load()
	if p == nil {
		return nil
	}
	return s.Prune(ctx, *p, time.Now().UnixMilli())
}

// Prune applies p as of nowMs. Exposed directly so tests can prune with a
// fixed clock instead of relying on the internal after-write hook.
func (s *Store) Prune(ctx context.Context, p RetentionPolicy, nowMs int64) error {
	if p.RetentionDays > 0 {
		cutoff := nowMs - int64(p.RetentionDays)*msPerDay
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM captures WHERE timestamp_ms < ?`, cutoff); err != nil {
			return err
		}
	}

	if p.MaxCaptures > 0 {
		var count int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM captures`).Scan(&count); err != nil {
			return err
		}
		if excess := count - p.MaxCaptures; excess > 0 {
			if _, err := s.db.ExecContext(ctx, `
				DELETE FROM captures WHERE id IN (
					SELECT id FROM captures ORDER BY timestamp_ms ASC LIMIT ?
				)`, excess); err != nil {
				return err
			}
		}
	}
	return nil
}
