package sqlite

const schemaSQL = `
-- One row per comparison run between a new and an old gallery
CREATE TABLE IF NOT EXISTS snapshots_batches (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	new_story_book_version TEXT NOT NULL,
	old_story_book_version TEXT NOT NULL
);

-- Child image rows; cascade with their batch
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL REFERENCES snapshots_batches(id) ON DELETE CASCADE,
	name VARCHAR(100) NOT NULL,
	path VARCHAR(200) NOT NULL,
	width DOUBLE NOT NULL,
	height DOUBLE NOT NULL,
	snap_shot_type VARCHAR(100) NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_batch_id ON snapshots(batch_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_batch_name ON snapshots(batch_id, name);
`
