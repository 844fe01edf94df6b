// Package cuesheet extracts track file references from CUE sheets.
//
// Only the FILE entries matter here: they name the BIN tracks a disc image
// is split into, in concatenation order. Track/index metadata is left to the
// external merge tool.
package cuesheet

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
)

// Index holds the track files referenced by one CUE sheet, in source order.
// Duplicates are preserved; order and multiplicity are what the merge tool
// concatenates by.
type Index struct {
	TrackFiles []string
	// Malformed counts FILE lines that carried no quoted filename.
	Malformed int
}

// Parse scans CUE sheet text for FILE entries and collects the referenced
// filenames. A FILE line without a quoted substring is logged and skipped;
// parsing continues so partial results stay usable. Parse never touches the
// filesystem.
func Parse(r io.Reader, logger *slog.Logger) (Index, error) {
	var idx Index
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !hasFileToken(line) {
			continue
		}
		name, ok := firstQuoted(line)
		if !ok {
			logger.Warn("CUE sheet FILE entry has no quoted filename", "line", lineNo, "text", line)
			idx.Malformed++
			continue
		}
		idx.TrackFiles = append(idx.TrackFiles, name)
	}
	if err := scanner.Err(); err != nil {
		return idx, err
	}
	return idx, nil
}

// hasFileToken reports whether the line starts with the FILE keyword,
// case-insensitively, as its own token.
func hasFileToken(line string) bool {
	if len(line) < 4 || !strings.EqualFold(line[:4], "FILE") {
		return false
	}
	return len(line) == 4 || line[4] == ' ' || line[4] == '\t'
}

// firstQuoted returns the first double-quoted substring of the line.
func firstQuoted(line string) (string, bool) {
	start := strings.IndexByte(line, '"')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(line[start+1:], '"')
	if end < 0 {
		return "", false
	}
	return line[start+1 : start+1+end], true
}
