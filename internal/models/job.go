package models

import "encoding/json"

// JobStatus represents the state of a batch job. Transitions are monotone
// along Pending -> Processing -> Completed or Failed.
type JobStatus string

const (
	JobStatusPending    JobStatus = "Pending"
	JobStatusProcessing JobStatus = "Processing"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusFailed     JobStatus = "Failed"
)

// Progress milestones written to the job record at stage boundaries.
const (
	ProgressCreated     = 0.0
	ProgressBatchOpened = 0.1
	ProgressNewCaptured = 0.4
	ProgressOldCaptured = 0.7
	ProgressDone        = 1.0
)

// BatchJob tracks one orchestration run in the key/value store.
type BatchJob struct {
	ID              string    `json:"id"`
	SnapShotBatchID *string   `json:"snap_shot_batch_id"`
	Status          JobStatus `json:"status"`
	Progress        float64   `json:"progress"`
	CreatedAt       Timestamp `json:"created_at"`
	UpdatedAt       Timestamp `json:"updated_at"`
}

// IsTerminal reports whether the job has reached a final state.
func (j *BatchJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// ToJSON serializes the job for key/value storage.
func (j *BatchJob) ToJSON() (string, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSONBatchJob deserializes a job from its key/value representation.
func FromJSONBatchJob(data string) (*BatchJob, error) {
	var job BatchJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}
