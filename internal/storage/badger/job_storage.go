package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/interfaces"
	"github.com/ternarybob/snapdiff/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// jobKeyPrefix is the keyspace batch jobs live under. The value is the
// JSON-serialized job.
const jobKeyPrefix = "snap_shot_batch_job"

// jobRecord is the stored key/value pair for one batch job.
type jobRecord struct {
	Key       string `badgerhold:"key"`
	Value     string
	UpdatedAt time.Time
}

// JobStorage implements the batch-job store on Badger
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStorage creates a new job storage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

func jobKey(id string) string {
	return fmt.Sprintf("%s:%s", jobKeyPrefix, id)
}

// InsertJob writes the job record, overwriting any previous value.
func (s *JobStorage) InsertJob(ctx context.Context, job *models.BatchJob) error {
	value, err := job.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize job: %w", err)
	}

	record := jobRecord{
		Key:       jobKey(job.ID),
		Value:     value,
		UpdatedAt: job.UpdatedAt.Time,
	}

	if err := s.db.Store().Upsert(record.Key, &record); err != nil {
		return fmt.Errorf("failed to store job: %w", err)
	}

	return nil
}

// UpdateJob is insert with last-writer-wins semantics.
func (s *JobStorage) UpdateJob(ctx context.Context, job *models.BatchJob) error {
	return s.InsertJob(ctx, job)
}

// GetJobByID returns one job or ErrNotFound.
func (s *JobStorage) GetJobByID(ctx context.Context, id string) (*models.BatchJob, error) {
	var record jobRecord
	err := s.db.Store().Get(jobKey(id), &record)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return models.FromJSONBatchJob(record.Value)
}

// GetAllJobs scans the job keyspace and returns every job.
func (s *JobStorage) GetAllJobs(ctx context.Context) ([]models.BatchJob, error) {
	var records []jobRecord
	err := s.db.Store().Find(&records, badgerhold.Where("Key").MatchFunc(func(ra *badgerhold.RecordAccess) (bool, error) {
		field, ok := ra.Field().(string)
		if !ok {
			return false, nil
		}
		return strings.HasPrefix(field, jobKeyPrefix+":"), nil
	}).SortBy("UpdatedAt"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan jobs: %w", err)
	}

	jobs := make([]models.BatchJob, 0, len(records))
	for _, record := range records {
		job, err := models.FromJSONBatchJob(record.Value)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", record.Key).Msg("Skipping undecodable job record")
			continue
		}
		jobs = append(jobs, *job)
	}

	return jobs, nil
}

// GetRunningJobs returns all jobs whose status is not Completed.
func (s *JobStorage) GetRunningJobs(ctx context.Context) ([]models.BatchJob, error) {
	jobs, err := s.GetAllJobs(ctx)
	if err != nil {
		return nil, err
	}

	running := make([]models.BatchJob, 0, len(jobs))
	for _, job := range jobs {
		if job.Status != models.JobStatusCompleted {
			running = append(running, job)
		}
	}

	return running, nil
}

// DeleteJobByID removes one job record.
func (s *JobStorage) DeleteJobByID(ctx context.Context, id string) error {
	err := s.db.Store().Delete(jobKey(id), &jobRecord{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// DeleteAllJobs clears the job keyspace.
func (s *JobStorage) DeleteAllJobs(ctx context.Context) error {
	var records []jobRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return fmt.Errorf("failed to list jobs for deletion: %w", err)
	}

	for _, record := range records {
		if err := s.db.Store().Delete(record.Key, &jobRecord{}); err != nil {
			s.logger.Warn().Str("key", record.Key).Err(err).Msg("Failed to delete job during DeleteAll")
		}
	}

	s.logger.Info().Int("count", len(records)).Msg("Deleted all jobs")
	return nil
}
