package scanning

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"discmerge/src/features/config"
)

func testConfig(by string, asciify bool) *config.Manager {
	return config.NewManager(&config.Config{
		Naming: config.Naming{By: by, Asciify: asciify},
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeGame(t *testing.T, dir, cueBase string, tracks ...string) {
	t.Helper()
	sheet := ""
	for _, track := range tracks {
		sheet += "FILE \"" + track + "\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n"
		writeFile(t, filepath.Join(dir, track), "binary data")
	}
	writeFile(t, filepath.Join(dir, cueBase+".cue"), sheet)
}

func TestScan_MultiTrackUnitEmitted(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "GameA")
	writeGame(t, dir, "track01", "track01 (Track 1).bin", "track01 (Track 2).bin")

	units, stats, err := NewScanner(testConfig("cue", false)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	unit := units[0]
	if unit.Name != "track01" {
		t.Errorf("expected name track01, got %q", unit.Name)
	}
	if unit.Directory != dir {
		t.Errorf("expected directory %q, got %q", dir, unit.Directory)
	}
	if len(unit.TrackFiles) != 2 {
		t.Fatalf("expected 2 track files, got %d", len(unit.TrackFiles))
	}
	if unit.TrackFiles[0] != "track01 (Track 1).bin" || unit.TrackFiles[1] != "track01 (Track 2).bin" {
		t.Errorf("track order not preserved: %v", unit.TrackFiles)
	}
	if unit.StagingDir != "orig" {
		t.Errorf("single-CUE directory must stage into orig, got %q", unit.StagingDir)
	}
	if stats.Units != 1 || stats.CueSheets != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestScan_SingleTrackIsNoOp(t *testing.T) {
	root := t.TempDir()
	writeGame(t, filepath.Join(root, "GameB"), "GameB", "GameB.bin")

	units, stats, err := NewScanner(testConfig("cue", false)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("expected no units, got %d", len(units))
	}
	if stats.NoOp != 1 {
		t.Errorf("expected 1 no-op, got %d", stats.NoOp)
	}
}

func TestScan_MissingTrackDiscardsCandidate(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "GameC")
	writeFile(t, filepath.Join(dir, "GameC.cue"),
		"FILE \"present.bin\" BINARY\nFILE \"absent.bin\" BINARY\n")
	writeFile(t, filepath.Join(dir, "present.bin"), "data")

	units, stats, err := NewScanner(testConfig("cue", false)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("expected no units, got %d", len(units))
	}
	if stats.Discarded != 1 {
		t.Errorf("expected 1 discarded candidate, got %d", stats.Discarded)
	}
}

func TestScan_DirectoryWithoutCueIsSkippedSilently(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Empty", "readme.txt"), "nothing here")

	units, stats, err := NewScanner(testConfig("cue", false)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("expected no units, got %d", len(units))
	}
	if stats.CueSheets != 0 {
		t.Errorf("expected no cue sheets, got %d", stats.CueSheets)
	}
}

func TestScan_MultiCueDirectoryYieldsKeyedStagingDirs(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Compilation")
	writeGame(t, dir, "disc1", "disc1 (Track 1).bin", "disc1 (Track 2).bin")
	writeGame(t, dir, "disc2", "disc2 (Track 1).bin", "disc2 (Track 2).bin")

	units, _, err := NewScanner(testConfig("cue", false)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	seen := map[string]bool{}
	for _, unit := range units {
		seen[unit.StagingDir] = true
	}
	if !seen["orig-disc1"] || !seen["orig-disc2"] {
		t.Errorf("multi-CUE staging dirs must be keyed per sheet, got %v", seen)
	}
}

func TestScan_FolderNamingPolicy(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Some Game (USA)")
	writeGame(t, dir, "weird-dump-name", "a.bin", "b.bin")

	units, _, err := NewScanner(testConfig("folder", false)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Name != "Some Game (USA)" {
		t.Errorf("expected folder name, got %q", units[0].Name)
	}
}

func TestScan_FolderNamingFallsBackPerSheetInMultiCueDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Compilation")
	writeGame(t, dir, "disc1", "disc1 (Track 1).bin", "disc1 (Track 2).bin")
	writeGame(t, dir, "disc2", "disc2 (Track 1).bin", "disc2 (Track 2).bin")

	units, _, err := NewScanner(testConfig("folder", false)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	// The folder name would make both merges write the same output pair;
	// each unit must keep its CUE basename instead.
	seen := map[string]bool{}
	for _, unit := range units {
		seen[unit.Name] = true
	}
	if !seen["disc1"] || !seen["disc2"] {
		t.Errorf("expected per-sheet names disc1 and disc2, got %v", seen)
	}
}

func TestScan_SingleTrackWithMissingFileIsDiscarded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "GameF", "GameF.cue"),
		"FILE \"gone.bin\" BINARY\n")

	units, stats, err := NewScanner(testConfig("cue", false)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("expected no units, got %d", len(units))
	}
	if stats.Discarded != 1 || stats.NoOp != 0 {
		t.Errorf("missing track must discard, not count as no-op: %+v", stats)
	}
}

func TestScan_AsciifyNaming(t *testing.T) {
	root := t.TempDir()
	writeGame(t, filepath.Join(root, "Game"), "Pokémon", "a.bin", "b.bin")

	units, _, err := NewScanner(testConfig("cue", true)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Name != "Pokemon" {
		t.Errorf("expected asciified name Pokemon, got %q", units[0].Name)
	}
}

func TestScan_BackupDirectoriesAreNotDescended(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "GameD")
	writeGame(t, dir, "game", "a.bin", "b.bin")
	// A leftover backup from an earlier run must not be rediscovered.
	writeGame(t, filepath.Join(dir, "orig"), "game", "a.bin", "b.bin")

	units, _, err := NewScanner(testConfig("cue", false)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Directory != dir {
		t.Errorf("unit must come from the game directory, got %q", units[0].Directory)
	}
}

func TestScan_NeverMutatesFilesystem(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "GameE")
	writeGame(t, dir, "game", "a.bin", "b.bin")

	before := listAll(t, root)
	if _, _, err := NewScanner(testConfig("cue", false)).Scan(context.Background(), root); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	after := listAll(t, root)
	if len(before) != len(after) {
		t.Fatalf("scan mutated the tree: before %v, after %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("scan mutated the tree: before %v, after %v", before, after)
		}
	}
}

func listAll(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	err := filepath.Walk(root, func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return paths
}
