package merging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeStubTool writes an executable script standing in for the merge tool.
func writeStubTool(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "binmerge-stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInvoke_ZeroExitIsSuccess(t *testing.T) {
	outDir := t.TempDir()
	// $1 input cue, $2 output name, $3 "-o", $4 output dir
	tool := writeStubTool(t, `
echo "[ INFO]	merging tracks"
touch "$4/$2.bin" "$4/$2.cue"
exit 0
`)
	invoker := NewInvoker("", tool)
	err := invoker.Invoke(context.Background(), "in.cue", "game", outDir, discardLogger())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	for _, name := range []string{"game.bin", "game.cue"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected stub output %s to exist: %v", name, err)
		}
	}
}

func TestInvoke_NonZeroExitIsFailureWithDiagnostics(t *testing.T) {
	tool := writeStubTool(t, `
echo "[ERROR]	cue sheet is corrupt" >&2
exit 3
`)
	invoker := NewInvoker("", tool)
	err := invoker.Invoke(context.Background(), "in.cue", "game", t.TempDir(), discardLogger())
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "cue sheet is corrupt") {
		t.Errorf("expected stderr diagnostics in error, got %q", err)
	}
	if strings.Contains(err.Error(), "[ERROR]") {
		t.Errorf("line tag must be stripped before re-logging, got %q", err)
	}
}

func TestInvoke_MissingToolFailsToStart(t *testing.T) {
	invoker := NewInvoker("", filepath.Join(t.TempDir(), "does-not-exist"))
	err := invoker.Invoke(context.Background(), "in.cue", "game", t.TempDir(), discardLogger())
	if err == nil {
		t.Fatal("expected failure for missing tool")
	}
}

func TestCommand_InterpreterPrependsTool(t *testing.T) {
	invoker := NewInvoker("python3", "/opt/binmerge")
	name, args := invoker.command("/roms/a/orig/a.cue", "a", "/roms/a")
	if name != "python3" {
		t.Errorf("expected interpreter as argv0, got %q", name)
	}
	want := []string{"/opt/binmerge", "/roms/a/orig/a.cue", "a", "-o", "/roms/a"}
	if len(args) != len(want) {
		t.Fatalf("expected args %v, got %v", want, args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("expected args %v, got %v", want, args)
		}
	}
}

func TestTagPrefixStripping(t *testing.T) {
	cases := map[string]string{
		"[ INFO]\tReading cue":  "Reading cue",
		"[ERROR] bad track":     "bad track",
		"no tag at all":         "no tag at all",
		"[binmerge]  combining": "combining",
	}
	for in, want := range cases {
		if got := tagPrefix.ReplaceAllString(in, ""); got != want {
			t.Errorf("strip(%q) = %q, want %q", in, got, want)
		}
	}
}
