// Package staging relocates a unit's original files into a per-unit backup
// directory before a merge, and restores them when the merge fails. The
// backup directory is a child of the unit directory, so every move is a
// same-filesystem rename.
package staging

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"discmerge/src/features/scanning"
)

// ErrConflict is returned by Stage when the unit's backup directory already
// contains files. The unit must be skipped untouched; an occupied backup
// means a previous run already processed (or is processing) this unit.
var ErrConflict = errors.New("staging directory already contains files")

// Area is the populated backup location for one unit.
type Area struct {
	// Dir is the absolute path of the staging directory.
	Dir  string
	Unit scanning.Unit
}

// Manager stages units and commits or rolls back their backup areas.
type Manager struct{}

// NewManager creates a new Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Stage moves the unit's CUE sheet and track files into its backup
// directory. On ErrConflict nothing has been touched. Any other error may
// leave a partial area behind; the returned Area is still valid and the
// caller is expected to Restore it.
func (m *Manager) Stage(unit scanning.Unit, logger *slog.Logger) (*Area, error) {
	dir := filepath.Join(unit.Directory, unit.StagingDir)
	area := &Area{Dir: dir, Unit: unit}

	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) > 0 {
		logger.Error("Staging: backup directory already exists and contains files, skipping unit",
			"unit", unit.Name, "dir", dir)
		return nil, ErrConflict
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	files := append([]string{filepath.Base(unit.CueFile)}, unit.TrackFiles...)
	for _, name := range files {
		src := filepath.Join(unit.Directory, name)
		dst := filepath.Join(dir, name)
		if err := os.Rename(src, dst); err != nil {
			logger.Error("Staging: failed to move file to backup directory",
				"unit", unit.Name, "file", name, "error", err)
			return area, err
		}
		logger.Debug("Staging: moved file to backup directory", "file", name, "dir", dir)
	}

	logger.Info("Staging: all original files moved to backup directory",
		"unit", unit.Name, "dir", dir)
	return area, nil
}

// Commit finalizes a successful merge. With deleteOriginals the staged files
// and the backup directory are removed; deletion failures are logged as a
// degraded outcome but never escalate, since the merge itself succeeded and
// leftovers are just a residual backup. Without deleteOriginals the area is
// kept as the permanent backup.
func (m *Manager) Commit(area *Area, deleteOriginals bool, logger *slog.Logger) {
	if !deleteOriginals {
		logger.Info("Staging: originals kept in backup directory", "dir", area.Dir)
		return
	}

	entries, err := os.ReadDir(area.Dir)
	if err != nil {
		logger.Warn("Staging: cannot list backup directory for cleanup, originals left behind",
			"dir", area.Dir, "error", err)
		return
	}
	for _, entry := range entries {
		path := filepath.Join(area.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("Staging: failed to delete staged original, leaving it as residual backup",
				"file", path, "error", err)
		}
	}
	removeIfEmpty(area.Dir, logger)
	logger.Info("Staging: original multi-track files removed", "unit", area.Unit.Name)
}

// Rollback restores a unit after a failed merge: partial output files are
// deleted, every staged file is moved back, and the backup directory is
// removed when it ends up empty. Restoration is best-effort; individual move
// failures are logged and the loop continues. Rollback must only run after a
// merge was attempted; if staging itself failed, use Restore, since files
// matching the output name are then still unstaged originals.
func (m *Manager) Rollback(area *Area, outputName string, logger *slog.Logger) {
	for _, ext := range []string{".cue", ".bin"} {
		partial := filepath.Join(area.Unit.Directory, outputName+ext)
		if err := os.Remove(partial); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("Staging: failed to delete partial merge output", "file", partial, "error", err)
			}
		} else {
			logger.Info("Staging: deleted partial merge output", "file", partial)
		}
	}
	m.Restore(area, logger)
}

// Restore moves every staged file back into the unit directory and removes
// the backup directory when it ends up empty. Nothing outside the backup
// directory is deleted, so it is safe after a partial staging failure.
func (m *Manager) Restore(area *Area, logger *slog.Logger) {
	entries, err := os.ReadDir(area.Dir)
	if err != nil {
		logger.Error("Staging: cannot list backup directory for restore", "dir", area.Dir, "error", err)
		return
	}
	for _, entry := range entries {
		src := filepath.Join(area.Dir, entry.Name())
		dst := filepath.Join(area.Unit.Directory, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			logger.Error("Staging: failed to move file back from backup directory",
				"file", entry.Name(), "error", err)
			continue
		}
		logger.Debug("Staging: restored file from backup directory", "file", entry.Name())
	}
	removeIfEmpty(area.Dir, logger)
	logger.Info("Staging: restore finished", "unit", area.Unit.Name)
}

func removeIfEmpty(dir string, logger *slog.Logger) {
	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		logger.Warn("Staging: backup directory not removed, it may not be empty", "dir", dir, "error", err)
	}
}
