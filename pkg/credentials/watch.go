package credentials

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/reliefops/relief/pkg/datakey"
)

// Watch reloads the registry whenever the accounts file changes. A file
// that fails to load leaves the current registry in place. Watch blocks
// until ctx is done.
func (r *Router) Watch(ctx context.Context, path string, cipher datakey.Cipher) error {
	logger := zerolog.Ctx(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so editors that replace the file are seen.
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reg, err := LoadRegistry(path, cipher)
			if err != nil {
				logger.Error().Err(err).Str("file", path).Msg("accounts reload failed, keeping previous accounts")
				continue
			}
			r.Replace(reg)
			logger.Info().Str("file", path).Int("accounts", reg.Len()).Msg("accounts reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("accounts watcher error")
		case <-ctx.Done():
			return nil
		}
	}
}
