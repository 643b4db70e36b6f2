package config

import (
	"bytes"
	"context"
	"crypto/sha256"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// cabinsWatcher remembers the last applied version of cabins.yaml.
type cabinsWatcher struct {
	path     string
	modTime  time.Time
	checksum []byte
	logger   zerolog.Logger
	onUpdate func(*CabinsConfig)
}

// WatchCabins loads cabins.yaml, hands it to onUpdate, then polls the file every
// interval. onUpdate runs again only when the file is newer and its content
// changed. Invalid edits are logged and skipped; the last good config stays in effect.
func WatchCabins(ctx context.Context, path string, interval time.Duration, logger *zerolog.Logger, onUpdate func(*CabinsConfig)) error {
	if path == "" {
		path = "configs/cabins.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if onUpdate == nil {
		onUpdate = func(*CabinsConfig) {}
	}
	w := &cabinsWatcher{path: path, logger: zerolog.Nop(), onUpdate: onUpdate}
	if logger != nil {
		w.logger = logger.With().Str("component", "cabins_watch").Str("path", path).Logger()
	}

	if _, err := w.poll(true); err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := w.poll(false); err != nil {
					w.logger.Error().Err(err).Msg("cabins config rejected")
				}
			}
		}
	}()
	return nil
}

// poll applies the file if it changed since the last successful apply.
func (w *cabinsWatcher) poll(initial bool) (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		if initial {
			return false, err
		}
		return false, nil // file being replaced
	}
	if !initial && !info.ModTime().After(w.modTime) {
		return false, nil
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		return false, err
	}
	sum := sha256.Sum256(data)
	if !initial && bytes.Equal(sum[:], w.checksum) {
		w.modTime = info.ModTime()
		return false, nil
	}

	cfg, err := parseCabinsConfig(data)
	if err != nil {
		// Remember the rejected version so the error is reported once per edit.
		w.modTime = info.ModTime()
		return false, err
	}
	w.modTime, w.checksum = info.ModTime(), sum[:]
	w.onUpdate(cfg)
	if !initial {
		w.logger.Info().Int("cabins", len(cfg.Cabins)).Msg("cabins config changed")
	}
	return true, nil
}
