package cuesheet

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse_ExtractsTrackFilesInOrder(t *testing.T) {
	sheet := `FILE "Game (Track 1).bin" BINARY
  TRACK 01 MODE2/2352
    INDEX 01 00:00:00
FILE "Game (Track 2).bin" BINARY
  TRACK 02 AUDIO
    INDEX 00 00:00:00
FILE "Game (Track 3).bin" BINARY
`
	idx, err := Parse(strings.NewReader(sheet), discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []string{"Game (Track 1).bin", "Game (Track 2).bin", "Game (Track 3).bin"}
	if len(idx.TrackFiles) != len(want) {
		t.Fatalf("expected %d track files, got %d", len(want), len(idx.TrackFiles))
	}
	for i, name := range want {
		if idx.TrackFiles[i] != name {
			t.Errorf("track %d: expected %q, got %q", i, name, idx.TrackFiles[i])
		}
	}
}

func TestParse_CaseInsensitiveFileToken(t *testing.T) {
	sheet := "file \"a.bin\" BINARY\nFiLe \"b.bin\" BINARY\n"
	idx, err := Parse(strings.NewReader(sheet), discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(idx.TrackFiles) != 2 {
		t.Fatalf("expected 2 track files, got %d", len(idx.TrackFiles))
	}
}

func TestParse_MalformedFileLineIsSkipped(t *testing.T) {
	sheet := `FILE track01.bin BINARY
FILE "track02.bin" BINARY
`
	idx, err := Parse(strings.NewReader(sheet), discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if idx.Malformed != 1 {
		t.Errorf("expected 1 malformed line, got %d", idx.Malformed)
	}
	if len(idx.TrackFiles) != 1 || idx.TrackFiles[0] != "track02.bin" {
		t.Errorf("expected the valid entry to survive, got %v", idx.TrackFiles)
	}
}

func TestParse_PreservesDuplicates(t *testing.T) {
	sheet := "FILE \"same.bin\" BINARY\nFILE \"same.bin\" BINARY\n"
	idx, err := Parse(strings.NewReader(sheet), discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(idx.TrackFiles) != 2 {
		t.Errorf("duplicates must be preserved, got %v", idx.TrackFiles)
	}
}

func TestParse_IgnoresFilePrefixWords(t *testing.T) {
	// FILENAME is not the FILE token.
	sheet := "FILENAME \"not-a-track.bin\"\nREM FILE \"also-not.bin\"\n"
	idx, err := Parse(strings.NewReader(sheet), discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(idx.TrackFiles) != 0 {
		t.Errorf("expected no track files, got %v", idx.TrackFiles)
	}
	if idx.Malformed != 0 {
		t.Errorf("non-FILE lines must not count as malformed, got %d", idx.Malformed)
	}
}
