package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/interfaces"
	"github.com/ternarybob/snapdiff/internal/models"
)

// BatchStorage implements SQLite storage for snapshot batches and their
// child snapshot rows.
type BatchStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewBatchStorage creates a new batch storage instance
func NewBatchStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.BatchStorage {
	return &BatchStorage{
		db:     db,
		logger: logger,
	}
}

// BeginTx starts the transaction an orchestration holds until commit.
func (s *BatchStorage) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx)
}

// InsertBatch inserts the batch row inside the caller's transaction.
func (s *BatchStorage) InsertBatch(ctx context.Context, tx *sql.Tx, batch *models.SnapShotBatchDTO) (*models.SnapShotBatchDTO, error) {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots_batches (id, name, created_at, new_story_book_version, old_story_book_version)
		VALUES (?, ?, ?, ?, ?)`,
		batch.ID,
		batch.Name,
		batch.CreatedAt.String(),
		batch.NewStoryBookVersion,
		batch.OldStoryBookVersion,
	)
	if err != nil {
		s.logger.Error().Err(err).Str("batch_id", batch.ID).Msg("Cannot insert snapshot batch")
		return nil, fmt.Errorf("failed to insert batch: %w", err)
	}

	return batch, nil
}

// InsertSnapshots bulk-inserts all snapshot rows with a single multi-row
// statement inside the caller's transaction.
func (s *BatchStorage) InsertSnapshots(ctx context.Context, tx *sql.Tx, snapshots []models.Snapshot) ([]models.Snapshot, error) {
	if len(snapshots) == 0 {
		return snapshots, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO snapshots (id, batch_id, name, path, width, height, snap_shot_type, created_at) VALUES `)

	args := make([]interface{}, 0, len(snapshots)*8)
	for i := range snapshots {
		snap := &snapshots[i]
		if snap.ID == "" {
			snap.ID = uuid.New().String()
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			snap.ID,
			snap.BatchID,
			snap.Name,
			snap.Path,
			snap.Width,
			snap.Height,
			string(snap.Kind),
			snap.CreatedAt.String(),
		)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		s.logger.Error().Err(err).Int("count", len(snapshots)).Msg("Cannot insert snapshots")
		return nil, fmt.Errorf("failed to insert snapshots: %w", err)
	}

	return snapshots, nil
}

// GetAllBatches returns every committed batch row.
func (s *BatchStorage) GetAllBatches(ctx context.Context) ([]models.SnapShotBatchDTO, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT id, name, created_at, new_story_book_version, old_story_book_version
		FROM snapshots_batches
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	batches := []models.SnapShotBatchDTO{}
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *batch)
	}
	return batches, rows.Err()
}

// GetBatchByID returns one batch row or ErrNotFound.
func (s *BatchStorage) GetBatchByID(ctx context.Context, id string) (*models.SnapShotBatchDTO, error) {
	row := s.db.DB().QueryRowContext(ctx, `
		SELECT id, name, created_at, new_story_book_version, old_story_book_version
		FROM snapshots_batches
		WHERE id = ?`, id)

	batch, err := scanBatch(row)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// GetSnapshotsByBatchID returns the child snapshot rows of a batch.
func (s *BatchStorage) GetSnapshotsByBatchID(ctx context.Context, id string) ([]models.Snapshot, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT id, batch_id, name, path, width, height, snap_shot_type, created_at
		FROM snapshots
		WHERE batch_id = ?
		ORDER BY name, snap_shot_type`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []models.Snapshot{}
	for rows.Next() {
		var snap models.Snapshot
		var kind string
		var createdAt time.Time
		if err := rows.Scan(&snap.ID, &snap.BatchID, &snap.Name, &snap.Path, &snap.Width, &snap.Height, &kind, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.Kind = models.ParseSnapshotKind(kind)
		snap.CreatedAt = models.NewTimestamp(createdAt)
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// DeleteBatchByID deletes the batch and its snapshots in one transaction.
// Both sub-deletes must remove at least one row each; otherwise the whole
// transaction rolls back and ErrNotFound is returned.
func (s *BatchStorage) DeleteBatchByID(ctx context.Context, id string) (*models.SnapShotBatchDTO, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	batch, err := scanBatch(tx.QueryRowContext(ctx, `
		SELECT id, name, created_at, new_story_book_version, old_story_book_version
		FROM snapshots_batches
		WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE batch_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete snapshots: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, interfaces.ErrNotFound
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM snapshots_batches WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete batch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, interfaces.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}

	s.logger.Info().Str("batch_id", id).Msg("Deleted snapshot batch")
	return batch, nil
}

// DeleteAllBatches removes every batch row (snapshots cascade).
func (s *BatchStorage) DeleteAllBatches(ctx context.Context) error {
	if _, err := s.db.DB().ExecContext(ctx, `DELETE FROM snapshots_batches`); err != nil {
		return fmt.Errorf("failed to delete all batches: %w", err)
	}
	return nil
}

// DeleteAllSnapshots removes every snapshot row.
func (s *BatchStorage) DeleteAllSnapshots(ctx context.Context) error {
	if _, err := s.db.DB().ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("failed to delete all snapshots: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// The driver maps TIMESTAMP-declared columns back to time.Time on read, so
// scanning goes through time.Time rather than the stored text.
func scanBatch(row scanner) (*models.SnapShotBatchDTO, error) {
	var batch models.SnapShotBatchDTO
	var createdAt time.Time
	if err := row.Scan(&batch.ID, &batch.Name, &createdAt, &batch.NewStoryBookVersion, &batch.OldStoryBookVersion); err != nil {
		return nil, err
	}
	batch.CreatedAt = models.NewTimestamp(createdAt)
	return &batch, nil
}
