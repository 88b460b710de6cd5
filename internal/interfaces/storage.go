package interfaces

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ternarybob/snapdiff/internal/models"
)

// ErrNotFound is returned when a batch or job id has no record.
var ErrNotFound = errors.New("not found")

// BatchStorage persists batches and their child snapshots in the relational
// store. Mutating operations that take a *sql.Tx run inside the caller's
// transaction; the rest use independent pool connections.
type BatchStorage interface {
	// BeginTx opens the transaction an orchestration holds for its duration.
	BeginTx(ctx context.Context) (*sql.Tx, error)

	InsertBatch(ctx context.Context, tx *sql.Tx, batch *models.SnapShotBatchDTO) (*models.SnapShotBatchDTO, error)
	// InsertSnapshots bulk-inserts all rows with a single statement.
	InsertSnapshots(ctx context.Context, tx *sql.Tx, snapshots []models.Snapshot) ([]models.Snapshot, error)

	GetAllBatches(ctx context.Context) ([]models.SnapShotBatchDTO, error)
	GetBatchByID(ctx context.Context, id string) (*models.SnapShotBatchDTO, error)
	GetSnapshotsByBatchID(ctx context.Context, id string) ([]models.Snapshot, error)

	// DeleteBatchByID removes the batch and all child snapshots atomically.
	// Returns ErrNotFound (after rollback) when the id has no batch row.
	DeleteBatchByID(ctx context.Context, id string) (*models.SnapShotBatchDTO, error)
	DeleteAllBatches(ctx context.Context) error
	DeleteAllSnapshots(ctx context.Context) error
}

// JobStorage tracks batch jobs in the key/value store. Update is last-writer-wins.
type JobStorage interface {
	InsertJob(ctx context.Context, job *models.BatchJob) error
	UpdateJob(ctx context.Context, job *models.BatchJob) error
	GetJobByID(ctx context.Context, id string) (*models.BatchJob, error)
	GetAllJobs(ctx context.Context) ([]models.BatchJob, error)
	// GetRunningJobs returns every job whose status is not Completed.
	GetRunningJobs(ctx context.Context) ([]models.BatchJob, error)
	DeleteJobByID(ctx context.Context, id string) error
	DeleteAllJobs(ctx context.Context) error
}

// StorageManager owns the storage backends and their lifecycle.
type StorageManager interface {
	BatchStorage() BatchStorage
	JobStorage() JobStorage
	Close() error
}
