// Command memri-seed injects a fixed set of on-disk images into the store
// as if they'd been captured, for demos and local testing without a real
// monitor. It drives the same Dispatcher and Store the daemon uses, through
// internal/platform/fake's deterministic Source instead of a real one.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/memri-app/memri/internal/capture"
	"github.com/memri-app/memri/internal/config"
	"github.com/memri-app/memri/internal/frame"
	"github.com/memri-app/memri/internal/logger"
	"github.com/memri-app/memri/internal/ocr"
	"github.com/memri-app/memri/internal/platform"
	"github.com/memri-app/memri/internal/platform/fake"
	"github.com/memri-app/memri/internal/store"
	"github.com/memri-app/memri/internal/windowfilter"
)

func main() {
	var imagesDir, configPath string

	root := &cobra.Command{
		Use:   "memri-seed",
		Short: "seed the store from a directory of static images",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(imagesDir, configPath)
		},
	}
	root.Flags().StringVar(&imagesDir, "images", "", "directory of PNG/JPEG images to seed, one capture per file (required)")
	root.Flags().StringVar(&configPath, "config", "", "path to config.yaml")
	root.MarkFlagRequired("images")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(imagesDir, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log := logger.Component("seed")

	paths, err := imageFiles(imagesDir)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found under %s", imagesDir)
	}

	st, err := store.Open(cfg.SQLiteDSN())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	src := fake.New(1)
	for _, p := range paths {
		img, err := imaging.Open(p)
		if err != nil {
			log.Warn("skipping unreadable image", "path", p, "error", err)
			continue
		}
		src.Push(0, []fake.Window{{
			Image:       img,
			AppName:     "memri-seed",
			WindowTitle: filepath.Base(p),
			IsFocused:   true,
		}})
	}

	detector := frame.NewDetector()
	filter := windowfilter.New(cfg.WindowIgnore, cfg.WindowInclude)
	dispatcher := capture.NewDispatcher(cfg.ImageDir, ocr.NewStubEngine(), cfg.Languages, log)

	ctx := context.Background()
	var frameNumber int64
	baseMs := time.Now().UnixMilli()
	seeded := 0
	for i := range paths {
		mf, err := src.CaptureFrame(ctx, 0, true)
		if err != nil {
			return fmt.Errorf("capture frame %d: %w", i, err)
		}

		result := detector.Evaluate(mf.MonitorImage)
		if result.Decision == frame.Insignificant {
			continue
		}

		admitted := make([]platform.CapturedWindow, 0, len(mf.Windows))
		for _, w := range mf.Windows {
			if filter.Accept(w.AppName, w.WindowTitle) {
				admitted = append(admitted, w)
			}
		}

		timestampMs := baseMs + int64(i)
		records := dispatcher.Dispatch(ctx, timestampMs, frameNumber, admitted)
		batch := capture.CaptureBatch{
			MonitorID:   0,
			FrameNumber: frameNumber,
			TimestampMs: timestampMs,
			Records:     records,
		}
		if err := st.PersistBatch(ctx, batch); err != nil {
			return fmt.Errorf("persist batch %d: %w", i, err)
		}
		frameNumber++
		seeded++
	}

	log.Info("seed complete", "images", len(paths), "captures_written", seeded)
	return nil
}

func imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".png" || ext == ".jpg" || ext == ".jpeg" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
