package utils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// StagingPrefix names every temp file written while handing uploads to the object store.
const StagingPrefix = "post-"

// PrepareStagingDir creates the private directory uploads are staged in. The sweeper
// deletes by name prefix, so the directory must not be shared with other programs.
func PrepareStagingDir(dir string) error {
	if dir == "" {
		return errors.New("staging dir is empty")
	}
	return os.MkdirAll(dir, 0o700)
}

// SweepStaging deletes staging files older than maxAge. Requests always remove their own
// temp files; this only catches leftovers from a process that died mid-upload.
func SweepStaging(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), StagingPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// StartStagingSweeper runs SweepStaging every interval until ctx is done.
func StartStagingSweeper(ctx context.Context, dir string, interval, maxAge time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := SweepStaging(dir, maxAge, now)
				if err != nil {
					logger.Warn("staging sweep failed", zap.String("dir", dir), zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Info("removed stale staging files", zap.Int("count", n))
				}
			}
		}
	}()
}
