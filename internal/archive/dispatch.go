package archive

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentUploads bounds how many archive uploads run at once across
// all monitor loops, so a slow backend can't accumulate unbounded
// goroutines.
const maxConcurrentUploads = 4

// URLRecorder persists the archive URL once an upload completes. Satisfied
// by internal/store.Store.UpdateArchiveURL.
type URLRecorder interface {
	UpdateArchiveURL(ctx context.Context, imagePath, archiveURL string) error
}

// Dispatcher offers written image paths to a Backend off the capture
// loop's critical path: Enqueue returns immediately, and failures (or a
// full upload pool) are only logged, never surfaced to the caller.
type Dispatcher struct {
	backend  Backend
	recorder URLRecorder
	log      *slog.Logger

	mu    sync.Mutex
	group *errgroup.Group
}

// NewDispatcher returns a Dispatcher that uploads through backend and
// records completed URLs via recorder.
func NewDispatcher(backend Backend, recorder URLRecorder, log *slog.Logger) *Dispatcher {
	group := &errgroup.Group{}
	group.SetLimit(maxConcurrentUploads)
	return &Dispatcher{backend: backend, recorder: recorder, log: log, group: group}
}

// Enqueue schedules imagePath for upload under key (typically the image's
// base name). It never blocks the caller past submission: if all
// maxConcurrentUploads slots are busy, the upload is dropped and logged
// rather than waiting for one to free up.
func (d *Dispatcher) Enqueue(ctx context.Context, imagePath string) {
	if d.backend == nil || imagePath == "" {
		return
	}
	key := filepath.Base(imagePath)

	d.mu.Lock()
	group := d.group
	d.mu.Unlock()

	started := group.TryGo(func() error {
		f, err := os.Open(imagePath)
		if err != nil {
			d.log.Warn("archive: open failed", "path", imagePath, "error", err)
			return nil
		}
		defer f.Close()

		url, err := d.backend.Put(ctx, key, f)
		if err != nil {
			d.log.Warn("archive: upload failed", "path", imagePath, "error", err)
			return nil
		}
		if err := d.recorder.UpdateArchiveURL(ctx, imagePath, url); err != nil {
			d.log.Warn("archive: record url failed", "path", imagePath, "error", err)
		}
		return nil
	})
	if !started {
		d.log.Warn("archive: upload pool full, dropping", "path", imagePath)
	}
}

// Wait blocks until every enqueued upload has finished. Used by tests and
// by graceful shutdown.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	group := d.group
	d.mu.Unlock()
	group.Wait() //nolint:errcheck
}
