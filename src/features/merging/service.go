package merging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"discmerge/src/features/config"
	"discmerge/src/features/history"
	"discmerge/src/features/jobs"
	"discmerge/src/features/metrics"
	"discmerge/src/features/scanning"
	"discmerge/src/features/staging"
)

// UnitState is one node of the per-unit state machine:
// discovered -> staging -> merging -> {committed | rolled_back | skipped_conflict}.
type UnitState string

const (
	StateDiscovered UnitState = "discovered"
	StateStaging    UnitState = "staging"
	StateMerging    UnitState = "merging"

	StateCommitted       UnitState = "committed"
	StateRolledBack      UnitState = "rolled_back"
	StateSkippedConflict UnitState = "skipped_conflict"
)

// UnitResult is the terminal outcome of one unit.
type UnitResult struct {
	Unit     scanning.Unit `json:"unit"`
	State    UnitState     `json:"state"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration"`
}

// BatchStats aggregates one batch run.
type BatchStats struct {
	Units      int           `json:"units"`
	Merged     int           `json:"merged"`
	RolledBack int           `json:"rolledBack"`
	Skipped    int           `json:"skipped"`
	NoOp       int           `json:"noOp"`
	Discarded  int           `json:"discarded"`
	Duration   time.Duration `json:"duration"`
}

// Summary renders the stats for operators.
func (s BatchStats) Summary() string {
	return fmt.Sprintf("Batch finished: %d merged, %d rolled back, %d skipped of %d units (%d single-track, %d discarded) in %s",
		s.Merged, s.RolledBack, s.Skipped, s.Units, s.NoOp, s.Discarded, s.Duration.Round(time.Second))
}

// Notifier receives a human-readable summary when a batch run finishes.
type Notifier interface {
	BatchFinished(summary string)
}

// Service drives units through stage -> merge -> commit/rollback. Units are
// processed strictly one at a time in discovery order; a unit failure never
// halts the batch.
type Service struct {
	config     *config.Manager
	scanner    *scanning.Scanner
	staging    *staging.Manager
	invoker    *Invoker
	history    *history.Service
	metrics    *metrics.Recorder
	jobService jobs.JobService
	notifier   Notifier
}

// NewService creates a new merging service. notifier may be nil.
func NewService(cfg *config.Manager, scanner *scanning.Scanner, stagingMgr *staging.Manager,
	invoker *Invoker, historyService *history.Service, recorder *metrics.Recorder,
	jobService jobs.JobService, notifier Notifier) *Service {
	return &Service{
		config:     cfg,
		scanner:    scanner,
		staging:    stagingMgr,
		invoker:    invoker,
		history:    historyService,
		metrics:    recorder,
		jobService: jobService,
		notifier:   notifier,
	}
}

// StartBatch queues a batch merge job over the given root. An empty root
// falls back to the configured root path.
func (s *Service) StartBatch(ctx context.Context, root string) (string, error) {
	if root == "" {
		root = s.config.Get().RootPath
	}
	jobID, err := s.jobService.StartJob("merge_batch", "Batch Merge", map[string]any{
		"root": root,
	})
	if err != nil {
		slog.Error("Service.StartBatch: failed to start job", "error", err)
		return "", fmt.Errorf("failed to start batch merge job: %w", err)
	}
	return jobID, nil
}

// RunBatch scans root and processes every discovered unit. The returned
// error is non-nil only when the scan itself fails; per-unit failures are
// isolated and show up in the stats.
func (s *Service) RunBatch(ctx context.Context, root, jobID string, logger *slog.Logger, progressUpdater func(int, string)) (BatchStats, error) {
	start := time.Now()
	var stats BatchStats

	units, scanStats, err := s.scanner.Scan(ctx, root)
	if err != nil {
		return stats, fmt.Errorf("scan failed: %w", err)
	}
	stats.Units = len(units)
	stats.NoOp = scanStats.NoOp
	stats.Discarded = scanStats.Discarded

	for i, unit := range units {
		if ctx.Err() != nil {
			stats.Duration = time.Since(start)
			return stats, ctx.Err()
		}
		if progressUpdater != nil {
			progressUpdater(i*100/len(units), fmt.Sprintf("Processing %s", unit.Name))
		}

		result := s.ProcessUnit(ctx, unit, logger)
		switch result.State {
		case StateCommitted:
			stats.Merged++
		case StateRolledBack:
			stats.RolledBack++
		case StateSkippedConflict:
			stats.Skipped++
		}
		s.record(ctx, unit, result, jobID)
	}

	stats.Duration = time.Since(start)
	if progressUpdater != nil {
		progressUpdater(100, "Batch completed")
	}
	s.metrics.BatchFinished()
	logger.Info(stats.Summary())
	if s.notifier != nil {
		s.notifier.BatchFinished(stats.Summary())
	}
	return stats, nil
}

// ProcessUnit drives one unit through the state machine and returns its
// terminal result. Rollback on failure is best-effort.
func (s *Service) ProcessUnit(ctx context.Context, unit scanning.Unit, logger *slog.Logger) UnitResult {
	start := time.Now()
	logger.Info("Now processing unit", "name", unit.Name, "directory", unit.Directory,
		"tracks", len(unit.TrackFiles), "state", StateDiscovered)

	// discovered -> staging
	area, err := s.staging.Stage(unit, logger)
	if errors.Is(err, staging.ErrConflict) {
		return s.finish(unit, StateSkippedConflict, "backup directory already contains files", start)
	}
	if err != nil {
		if area != nil {
			// Partial staging is recoverable: restore moves back whatever
			// already landed in the backup directory. No merge ran yet, so
			// files matching the output name are originals, not partial
			// outputs, and must survive.
			s.staging.Restore(area, logger)
		}
		return s.finish(unit, StateRolledBack, fmt.Sprintf("staging failed: %v", err), start)
	}

	// staging -> merging
	logger.Info("Merging BIN files", "unit", unit.Name, "state", StateMerging)
	stagedCue := filepath.Join(area.Dir, filepath.Base(unit.CueFile))
	if err := s.invoker.Invoke(ctx, stagedCue, unit.Name, unit.Directory, logger); err != nil {
		logger.Error("Merge failed, removing partial output and restoring originals",
			"unit", unit.Name, "error", err)
		s.staging.Rollback(area, unit.Name, logger)
		return s.finish(unit, StateRolledBack, err.Error(), start)
	}

	// merging -> committed
	deleteOriginals := s.config.Get().Removal.Mode == "always"
	s.staging.Commit(area, deleteOriginals, logger)
	logger.Info("Successfully completed processing of unit", "name", unit.Name)
	return s.finish(unit, StateCommitted, "", start)
}

func (s *Service) finish(unit scanning.Unit, state UnitState, reason string, start time.Time) UnitResult {
	result := UnitResult{
		Unit:     unit,
		State:    state,
		Reason:   reason,
		Duration: time.Since(start),
	}
	s.metrics.UnitFinished(string(state), result.Duration)
	return result
}

func (s *Service) record(ctx context.Context, unit scanning.Unit, result UnitResult, jobID string) {
	s.history.Record(ctx, history.Entry{
		JobID:     jobID,
		UnitName:  unit.Name,
		Directory: unit.Directory,
		CueFile:   unit.CueFile,
		Tracks:    len(unit.TrackFiles),
		State:     string(result.State),
		Reason:    result.Reason,
		Duration:  result.Duration,
		CreatedAt: time.Now(),
	})
}
