package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/interfaces"
	"github.com/ternarybob/snapdiff/internal/models"
	"github.com/ternarybob/snapdiff/internal/services/assets"
	"github.com/ternarybob/snapdiff/internal/services/compare"
	"github.com/ternarybob/snapdiff/internal/services/gallery"
)

// Service orchestrates one comparison run end to end: index both galleries,
// capture every story, diff the pairs, persist images and rows.
type Service struct {
	batches  interfaces.BatchStorage
	jobs     interfaces.JobStorage
	indexer  *gallery.Indexer
	capturer interfaces.Capturer
	engine   *compare.Engine
	writer   *assets.Writer
	logger   arbor.ILogger
}

// NewService wires the orchestrator.
func NewService(
	batches interfaces.BatchStorage,
	jobs interfaces.JobStorage,
	indexer *gallery.Indexer,
	capturer interfaces.Capturer,
	engine *compare.Engine,
	writer *assets.Writer,
	logger arbor.ILogger,
) *Service {
	return &Service{
		batches:  batches,
		jobs:     jobs,
		indexer:  indexer,
		capturer: capturer,
		engine:   engine,
		writer:   writer,
		logger:   logger,
	}
}

// CreateBatch runs a full comparison of the two gallery URLs and returns the
// assembled batch. A job record tracks progress for the duration of the call
// and survives it; on failure the job is marked Failed and the error
// returned.
func (s *Service) CreateBatch(ctx context.Context, newURL, oldURL string) (*models.SnapShotBatch, error) {
	job := &models.BatchJob{
		ID:        uuid.New().String(),
		Status:    models.JobStatusPending,
		Progress:  models.ProgressCreated,
		CreatedAt: models.Now(),
		UpdatedAt: models.Now(),
	}
	if err := s.jobs.InsertJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}

	batch, err := s.run(ctx, job, newURL, oldURL)
	if err != nil {
		job.Status = models.JobStatusFailed
		s.updateJob(ctx, job)
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Batch run failed")
		return nil, err
	}

	return batch, nil
}

func (s *Service) run(ctx context.Context, job *models.BatchJob, newURL, oldURL string) (*models.SnapShotBatch, error) {
	tx, err := s.batches.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction: %w", err)
	}
	// No-op once the transaction commits.
	defer tx.Rollback()

	dto, err := s.batches.InsertBatch(ctx, tx, &models.SnapShotBatchDTO{
		ID:                  job.ID,
		Name:                newURL + "-" + oldURL,
		CreatedAt:           models.Now(),
		NewStoryBookVersion: newURL,
		OldStoryBookVersion: oldURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert batch: %w", err)
	}

	job.SnapShotBatchID = &dto.ID
	job.Status = models.JobStatusProcessing
	job.Progress = models.ProgressBatchOpened
	s.updateJob(ctx, job)

	folder := fmt.Sprintf("%d-%s", time.Now().Unix(), job.ID)

	newImages, err := s.captureSide(ctx, newURL, models.SnapshotKindNew)
	if err != nil {
		return nil, err
	}
	job.Progress = models.ProgressNewCaptured
	s.updateJob(ctx, job)

	oldImages, err := s.captureSide(ctx, oldURL, models.SnapshotKindOld)
	if err != nil {
		return nil, err
	}
	job.Progress = models.ProgressOldCaptured
	s.updateJob(ctx, job)

	categorized := compare.Categorize(newImages, oldImages)
	diffs, err := s.engine.Diff(ctx, categorized.Paired)
	if err != nil {
		return nil, err
	}

	rows, err := s.persistImages(dto.ID, folder, categorized, diffs)
	if err != nil {
		return nil, err
	}

	rows, err = s.batches.InsertSnapshots(ctx, tx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}

	job.Status = models.JobStatusCompleted
	job.Progress = models.ProgressDone
	s.updateJob(ctx, job)

	s.logger.Info().
		Str("batch_id", dto.ID).
		Int("new", len(newImages)).
		Int("old", len(oldImages)).
		Int("created", len(categorized.Created)).
		Int("deleted", len(categorized.Deleted)).
		Int("changed", len(diffs)).
		Msg("Batch completed")

	return models.AssembleBatch(dto, rows), nil
}

// captureSide indexes one gallery and captures all its stories. Stories that
// fail to capture are logged and dropped; an index failure fails the run.
func (s *Service) captureSide(ctx context.Context, baseURL string, side models.SnapshotKind) ([]models.RawImage, error) {
	descriptors, err := s.indexer.Descriptors(ctx, baseURL, side)
	if err != nil {
		return nil, err
	}

	results, err := s.capturer.Capture(ctx, descriptors)
	if err != nil {
		return nil, fmt.Errorf("capture of %s failed: %w", baseURL, err)
	}

	images := make([]models.RawImage, 0, len(results))
	for i := range results {
		if results[i].Err != nil {
			s.logger.Warn().Err(results[i].Err).Str("story", results[i].Name).Msg("Dropping failed capture")
			continue
		}
		images = append(images, *results[i].Image)
	}

	return images, nil
}

// persistImages writes every image that belongs in the batch to the asset
// tree and builds the matching snapshot rows. Every paired story keeps its
// new and old captures; diff renders exist only for changed pairs.
func (s *Service) persistImages(batchID, folder string, categorized compare.Categorized, diffs []compare.DiffResult) ([]models.Snapshot, error) {
	var rows []models.Snapshot

	save := func(img *models.RawImage, subfolder string) error {
		publicPath, err := s.writer.Save(img, folder+"/"+subfolder)
		if err != nil {
			return err
		}
		rows = append(rows, models.Snapshot{
			BatchID:   batchID,
			Name:      img.Name,
			Path:      publicPath,
			Width:     img.Width,
			Height:    img.Height,
			Kind:      img.Kind,
			CreatedAt: models.Now(),
		})
		return nil
	}

	for i := range categorized.Created {
		if err := save(&categorized.Created[i], "created"); err != nil {
			return nil, err
		}
	}
	for i := range categorized.Deleted {
		if err := save(&categorized.Deleted[i], "deleted"); err != nil {
			return nil, err
		}
	}

	for i := range categorized.Paired {
		pair := &categorized.Paired[i]
		if err := save(&pair.New, "new"); err != nil {
			return nil, err
		}
		if err := save(&pair.Old, "old"); err != nil {
			return nil, err
		}
	}

	for i := range diffs {
		diff := &diffs[i]
		if err := save(&diff.ColorDiff, "diff/color"); err != nil {
			return nil, err
		}
		if err := save(&diff.LcsDiff, "diff/lcs"); err != nil {
			return nil, err
		}
	}

	return rows, nil
}

// updateJob stamps and writes the job record. Job updates are advisory
// progress reporting and never fail the run.
func (s *Service) updateJob(ctx context.Context, job *models.BatchJob) {
	job.UpdatedAt = models.Now()
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to update job record")
	}
}

// GetAllBatches returns every batch with its snapshots assembled.
func (s *Service) GetAllBatches(ctx context.Context) ([]models.SnapShotBatch, error) {
	dtos, err := s.batches.GetAllBatches(ctx)
	if err != nil {
		return nil, err
	}

	batches := make([]models.SnapShotBatch, 0, len(dtos))
	for i := range dtos {
		snapshots, err := s.batches.GetSnapshotsByBatchID(ctx, dtos[i].ID)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *models.AssembleBatch(&dtos[i], snapshots))
	}

	return batches, nil
}

// GetBatchByID returns one assembled batch or interfaces.ErrNotFound.
func (s *Service) GetBatchByID(ctx context.Context, id string) (*models.SnapShotBatch, error) {
	dto, err := s.batches.GetBatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshots, err := s.batches.GetSnapshotsByBatchID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.AssembleBatch(dto, snapshots), nil
}

// DeleteBatchByID removes one batch with its snapshots.
func (s *Service) DeleteBatchByID(ctx context.Context, id string) error {
	_, err := s.batches.DeleteBatchByID(ctx, id)
	return err
}

// GetJobByID returns one job record or interfaces.ErrNotFound.
func (s *Service) GetJobByID(ctx context.Context, id string) (*models.BatchJob, error) {
	return s.jobs.GetJobByID(ctx, id)
}

// GetRunningJobs returns every job that has not completed.
func (s *Service) GetRunningJobs(ctx context.Context) ([]models.BatchJob, error) {
	return s.jobs.GetRunningJobs(ctx)
}

// CleanUp erases all jobs, batches, snapshots and the asset tree, in that
// order.
func (s *Service) CleanUp(ctx context.Context) error {
	if err := s.jobs.DeleteAllJobs(ctx); err != nil {
		return fmt.Errorf("failed to delete jobs: %w", err)
	}
	if err := s.batches.DeleteAllBatches(ctx); err != nil {
		return fmt.Errorf("failed to delete batches: %w", err)
	}
	if err := s.batches.DeleteAllSnapshots(ctx); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	if err := s.writer.RemoveAll(); err != nil {
		return err
	}

	s.logger.Info().Msg("Cleaned up all batches, jobs and assets")
	return nil
}
