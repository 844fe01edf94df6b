package merging

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"sync"
)

// tagPrefix matches the fixed-width bracketed tag the merge tool prefixes
// its output lines with, e.g. "[ INFO]\t". It is stripped before re-logging.
var tagPrefix = regexp.MustCompile(`^\[[^\]]*\][ \t]*`)

// maxDiagnosticLines bounds how much tool output is kept as a failure reason.
const maxDiagnosticLines = 20

// Invoker runs the external merge tool as a subprocess.
type Invoker struct {
	interpreter string
	tool        string
}

// NewInvoker creates an Invoker for the configured tool. interpreter may be
// empty, in which case the tool is executed directly.
func NewInvoker(interpreter, tool string) *Invoker {
	return &Invoker{interpreter: interpreter, tool: tool}
}

// Invoke merges the staged CUE sheet into <outputName>.bin/.cue inside
// outputDir. Tool output is streamed line by line while the process runs;
// stderr lines are logged at error level and accumulated as the failure
// reason. A non-zero exit is a failure; there are no retries. Invoke blocks
// for the duration of the tool's run.
func (i *Invoker) Invoke(ctx context.Context, cuePath, outputName, outputDir string, logger *slog.Logger) error {
	name, args := i.command(cuePath, outputName, outputDir)
	logger.Debug("Merge: executing command", "command", name, "args", args)

	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start merge tool: %w", err)
	}

	// Both streams are drained while the child runs. Waiting for exit
	// before reading would deadlock once the tool fills a pipe buffer.
	var wg sync.WaitGroup
	var diagnostics []string
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := tagPrefix.ReplaceAllString(strings.TrimSpace(scanner.Text()), "")
			if line == "" {
				continue
			}
			logger.Debug("Merge: tool output", "line", line)
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := tagPrefix.ReplaceAllString(strings.TrimSpace(scanner.Text()), "")
			if line == "" {
				continue
			}
			logger.Error("Merge: tool error output", "line", line)
			if len(diagnostics) < maxDiagnosticLines {
				diagnostics = append(diagnostics, line)
			}
		}
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if len(diagnostics) > 0 {
			return fmt.Errorf("merge tool failed: %w: %s", err, strings.Join(diagnostics, "; "))
		}
		return fmt.Errorf("merge tool failed: %w", err)
	}

	logger.Info("Merge: tool completed successfully", "output", outputName)
	return nil
}

// command builds the argv for one invocation: tool, input CUE, output base
// name and the output directory flag.
func (i *Invoker) command(cuePath, outputName, outputDir string) (string, []string) {
	args := []string{cuePath, outputName, "-o", outputDir}
	if i.interpreter == "" {
		return i.tool, args
	}
	return i.interpreter, append([]string{i.tool}, args...)
}
