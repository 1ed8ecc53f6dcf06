package fileadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/hotspot-etl/internal/domain"
	"github.com/gofrs/flock"
)

// Output file names, relative to the writer's directory.
const (
	SeasonalFile = "seasonal_hotspots.json"
	HotspotsFile = "hotspots.json"
	StatsFile    = "stats.json"
	LockFile     = ".hotspots.lock"
)

// ErrOutputLocked is returned when another run holds the output directory.
var ErrOutputLocked = errors.New("output directory is locked by another run")

// Writer writes the report artifacts as indented JSON into a directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer for dir. The directory is created on first write.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// LoadReport writes every artifact. Each file is replaced atomically, so a
// reader never sees a partial report.
func (w *Writer) LoadReport(ctx context.Context, out domain.Output) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	lock := flock.New(filepath.Join(w.dir, LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return ErrOutputLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn("failed to release output lock", "error", err)
		}
	}()

	files := []struct {
		name string
		v    any
	}{
		{SeasonalFile, out.Seasonal},
		{HotspotsFile, out.Hotspots},
		{StatsFile, out.Stats},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(w.dir, f.name)
		if err := writeJSONAtomic(path, f.v); err != nil {
			return err
		}
		w.logger.Info("report written", "path", path)
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
