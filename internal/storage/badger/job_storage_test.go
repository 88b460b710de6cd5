package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/snapdiff/internal/common"
	"github.com/ternarybob/snapdiff/internal/interfaces"
	"github.com/ternarybob/snapdiff/internal/models"
)

func newTestJobStorage(t *testing.T) interfaces.JobStorage {
	t.Helper()

	config := &common.BadgerConfig{Path: t.TempDir()}
	db, err := NewBadgerDB(common.GetLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewJobStorage(db, common.GetLogger())
}

func testJob(id string, status models.JobStatus) *models.BatchJob {
	return &models.BatchJob{
		ID:        id,
		Status:    status,
		Progress:  models.ProgressCreated,
		CreatedAt: models.Now(),
		UpdatedAt: models.Now(),
	}
}

func TestInsertAndGetJob(t *testing.T) {
	storage := newTestJobStorage(t)
	ctx := context.Background()

	job := testJob("job-1", models.JobStatusPending)
	require.NoError(t, storage.InsertJob(ctx, job))

	got, err := storage.GetJobByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.ID)
	assert.Equal(t, models.JobStatusPending, got.Status)
	assert.Nil(t, got.SnapShotBatchID)
}

func TestGetJobByIDNotFound(t *testing.T) {
	storage := newTestJobStorage(t)

	_, err := storage.GetJobByID(context.Background(), "missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestUpdateJobOverwrites(t *testing.T) {
	storage := newTestJobStorage(t)
	ctx := context.Background()

	job := testJob("job-1", models.JobStatusPending)
	require.NoError(t, storage.InsertJob(ctx, job))

	batchID := "batch-9"
	job.Status = models.JobStatusProcessing
	job.Progress = models.ProgressBatchOpened
	job.SnapShotBatchID = &batchID
	require.NoError(t, storage.UpdateJob(ctx, job))

	got, err := storage.GetJobByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusProcessing, got.Status)
	assert.Equal(t, models.ProgressBatchOpened, got.Progress)
	require.NotNil(t, got.SnapShotBatchID)
	assert.Equal(t, "batch-9", *got.SnapShotBatchID)
}

func TestGetAllJobs(t *testing.T) {
	storage := newTestJobStorage(t)
	ctx := context.Background()

	first := testJob("job-1", models.JobStatusCompleted)
	first.UpdatedAt = models.NewTimestamp(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
	second := testJob("job-2", models.JobStatusPending)
	second.UpdatedAt = models.NewTimestamp(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))

	require.NoError(t, storage.InsertJob(ctx, first))
	require.NoError(t, storage.InsertJob(ctx, second))

	jobs, err := storage.GetAllJobs(ctx)
	require.NoError(t, err)

	require.Len(t, jobs, 2)
	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, "job-2", jobs[1].ID)
}

func TestGetRunningJobsExcludesCompleted(t *testing.T) {
	storage := newTestJobStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.InsertJob(ctx, testJob("done", models.JobStatusCompleted)))
	require.NoError(t, storage.InsertJob(ctx, testJob("pending", models.JobStatusPending)))
	require.NoError(t, storage.InsertJob(ctx, testJob("working", models.JobStatusProcessing)))
	require.NoError(t, storage.InsertJob(ctx, testJob("broken", models.JobStatusFailed)))

	running, err := storage.GetRunningJobs(ctx)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, job := range running {
		ids[job.ID] = true
	}

	assert.Len(t, running, 3)
	assert.True(t, ids["pending"])
	assert.True(t, ids["working"])
	assert.True(t, ids["broken"])
	assert.False(t, ids["done"])
}

func TestDeleteJobByID(t *testing.T) {
	storage := newTestJobStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.InsertJob(ctx, testJob("job-1", models.JobStatusPending)))
	require.NoError(t, storage.DeleteJobByID(ctx, "job-1"))

	_, err := storage.GetJobByID(ctx, "job-1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestDeleteJobByIDNotFound(t *testing.T) {
	storage := newTestJobStorage(t)

	err := storage.DeleteJobByID(context.Background(), "missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestDeleteAllJobs(t *testing.T) {
	storage := newTestJobStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.InsertJob(ctx, testJob("job-1", models.JobStatusPending)))
	require.NoError(t, storage.InsertJob(ctx, testJob("job-2", models.JobStatusCompleted)))

	require.NoError(t, storage.DeleteAllJobs(ctx))

	jobs, err := storage.GetAllJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
