package scanning

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"discmerge/src/features/config"
	"discmerge/src/features/cuesheet"

	"github.com/gosimple/unidecode"
)

// stagingDirName is the backup directory for single-CUE game folders.
// Multi-CUE folders key their backups per sheet: orig-<cue basename>.
const stagingDirName = "orig"

// Scanner discovers mergeable units under a root directory. Scanning never
// mutates the filesystem; all validation is read-only.
type Scanner struct {
	config *config.Manager
}

// NewScanner creates a new Scanner.
func NewScanner(cfg *config.Manager) *Scanner {
	return &Scanner{config: cfg}
}

// Scan walks the full subtree under root and returns every valid multi-track
// unit in discovery order. Per-candidate problems (missing tracks, empty or
// single-track sheets) are logged and counted but never abort the scan.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Unit, Stats, error) {
	logger := slog.Default()
	var units []Unit
	var stats Stats

	root = filepath.Clean(root)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.Warn("Scanner: cannot access path, skipping", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Never descend into backup areas: their staged CUE sheets would
		// otherwise be rediscovered as fresh candidates.
		if path != root && isStagingDir(d.Name()) {
			logger.Debug("Scanner: skipping backup directory", "path", path)
			return filepath.SkipDir
		}

		stats.Directories++
		s.scanDirectory(path, &units, &stats, logger)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	logger.Info("Scanner: scan finished",
		"root", root,
		"directories", stats.Directories,
		"cue_sheets", stats.CueSheets,
		"units", stats.Units,
		"no_op", stats.NoOp,
		"discarded", stats.Discarded,
	)
	return units, stats, nil
}

// scanDirectory evaluates every CUE sheet in one directory. Each sheet is an
// independent candidate; a directory may yield several units.
func (s *Scanner) scanDirectory(dir string, units *[]Unit, stats *Stats, logger *slog.Logger) {
	cues, err := listCueFiles(dir)
	if err != nil {
		logger.Warn("Scanner: cannot list directory, skipping", "path", dir, "error", err)
		return
	}
	if len(cues) == 0 {
		logger.Debug("Scanner: no CUE sheets in directory", "path", dir)
		return
	}

	for _, cueName := range cues {
		stats.CueSheets++
		cuePath := filepath.Join(dir, cueName)
		unit, ok := s.buildUnit(dir, cueName, len(cues), stats, logger)
		if !ok {
			continue
		}
		logger.Info("Scanner: found mergeable unit",
			"name", unit.Name, "cue", cuePath, "tracks", len(unit.TrackFiles))
		*units = append(*units, unit)
		stats.Units++
	}
}

// buildUnit parses and validates a single CUE sheet candidate.
func (s *Scanner) buildUnit(dir, cueName string, cueCount int, stats *Stats, logger *slog.Logger) (Unit, bool) {
	cuePath := filepath.Join(dir, cueName)
	f, err := os.Open(cuePath)
	if err != nil {
		logger.Error("Scanner: cannot open CUE sheet", "cue", cuePath, "error", err)
		stats.Discarded++
		return Unit{}, false
	}
	idx, err := cuesheet.Parse(f, logger)
	f.Close()
	if err != nil {
		logger.Error("Scanner: cannot read CUE sheet", "cue", cuePath, "error", err)
		stats.Discarded++
		return Unit{}, false
	}
	stats.MalformedLines += idx.Malformed

	// Existence is verified before classification: a sheet whose only
	// track is absent is a missing-track discard, not a no-op.
	var missing []string
	for _, track := range idx.TrackFiles {
		if _, err := os.Stat(filepath.Join(dir, track)); err != nil {
			missing = append(missing, track)
		}
	}
	if len(missing) > 0 {
		logger.Error("Scanner: CUE sheet references missing track files",
			"cue", cuePath, "missing", missing)
		stats.Discarded++
		return Unit{}, false
	}

	switch len(idx.TrackFiles) {
	case 0:
		logger.Error("Scanner: CUE sheet references no track files", "cue", cuePath)
		stats.Discarded++
		return Unit{}, false
	case 1:
		logger.Info("Scanner: single track, no merge needed", "cue", cuePath)
		stats.NoOp++
		return Unit{}, false
	}

	staging := stagingDirName
	if cueCount > 1 {
		staging = stagingDirName + "-" + baseName(cueName)
	}

	return Unit{
		Name:       s.unitName(dir, cueName, cueCount, logger),
		Directory:  dir,
		CueFile:    cuePath,
		TrackFiles: idx.TrackFiles,
		StagingDir: staging,
	}, true
}

// unitName applies the configured naming policy to a candidate. The folder
// policy cannot hold in a multi-CUE directory: every unit would get the same
// output name and the later merges would overwrite the earlier ones, so
// those units fall back to the CUE basename.
func (s *Scanner) unitName(dir, cueName string, cueCount int, logger *slog.Logger) string {
	naming := s.config.Get().Naming
	name := baseName(cueName)
	if naming.By == "folder" {
		if cueCount > 1 {
			logger.Warn("Scanner: folder naming would collide in multi-CUE directory, using CUE basename",
				"directory", dir, "cue", cueName)
		} else {
			name = filepath.Base(dir)
		}
	}
	if naming.Asciify {
		name = strings.TrimSpace(unidecode.Unidecode(name))
	}
	return name
}

// listCueFiles returns the CUE sheet filenames of one directory, in the
// order the directory listing yields them.
func listCueFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var cues []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".cue") {
			cues = append(cues, entry.Name())
		}
	}
	return cues, nil
}

func isStagingDir(name string) bool {
	return name == stagingDirName || strings.HasPrefix(name, stagingDirName+"-")
}

func baseName(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}
