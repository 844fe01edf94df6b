package merging

import (
	"context"

	"discmerge/src/features/jobs"
)

// BatchMergeTask implements jobs.Task for batch merge runs.
type BatchMergeTask struct {
	service *Service
}

// NewBatchMergeTask creates a new BatchMergeTask.
func NewBatchMergeTask(service *Service) *BatchMergeTask {
	return &BatchMergeTask{service: service}
}

// MetadataKeys returns the required metadata keys for a batch merge job.
func (t *BatchMergeTask) MetadataKeys() []string {
	return []string{"root"}
}

// Execute runs the batch merge logic.
func (t *BatchMergeTask) Execute(ctx context.Context, job *jobs.Job, progressUpdater func(int, string)) (map[string]any, error) {
	root := job.Metadata["root"].(string)

	stats, err := t.service.RunBatch(ctx, root, job.ID, job.Logger, progressUpdater)
	if err != nil {
		return nil, err
	}

	return map[string]any{"stats": stats, "msg": stats.Summary()}, nil
}

// Cleanup does nothing for batch merges; every unit commits or rolls back
// its own staging area.
func (t *BatchMergeTask) Cleanup(job *jobs.Job) error {
	return nil
}
