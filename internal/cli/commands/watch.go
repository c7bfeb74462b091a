package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// watchSchema converts once, then again after every change to the schema
// file until ctx is cancelled. Conversion failures are reported and the
// watch continues.
func watchSchema(ctx context.Context, c *converter, debounce time.Duration, report func(*ConvertOutput, error)) error {
	schemaPath, err := filepath.Abs(c.schemaPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(schemaPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(schemaPath), err)
	}
	c.logger.Info("watching schema", "schema", schemaPath, "debounce", debounce)

	report(c.run())

	changes := make(chan struct{}, 1)
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return watchLoop(egctx, watcher, schemaPath, debounce, changes)
	})

	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-changes:
				report(c.run())
			}
		}
	})

	return eg.Wait()
}

// watchLoop forwards debounced change notifications for file to changes.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, file string, debounce time.Duration, changes chan<- struct{}) error {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, notify)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}
