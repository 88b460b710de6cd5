package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/common"
	"github.com/ternarybob/snapdiff/internal/interfaces"
	"github.com/ternarybob/snapdiff/internal/storage/badger"
	"github.com/ternarybob/snapdiff/internal/storage/sqlite"
)

// Manager wires the relational batch store and the key/value job store and
// owns their lifecycle.
type Manager struct {
	sqliteDB     *sqlite.SQLiteDB
	badgerDB     *badger.BadgerDB
	batchStorage interfaces.BatchStorage
	jobStorage   interfaces.JobStorage
	logger       arbor.ILogger
}

// NewManager opens both backends and constructs their stores.
func NewManager(config *common.Config, logger arbor.ILogger) (interfaces.StorageManager, error) {
	sqliteDB, err := sqlite.NewSQLiteDB(logger, &config.Storage.SQLite)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite: %w", err)
	}

	badgerDB, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("failed to initialize badger: %w", err)
	}

	return &Manager{
		sqliteDB:     sqliteDB,
		badgerDB:     badgerDB,
		batchStorage: sqlite.NewBatchStorage(sqliteDB, logger),
		jobStorage:   badger.NewJobStorage(badgerDB, logger),
		logger:       logger,
	}, nil
}

// BatchStorage returns the relational batch store.
func (m *Manager) BatchStorage() interfaces.BatchStorage {
	return m.batchStorage
}

// JobStorage returns the key/value job store.
func (m *Manager) JobStorage() interfaces.JobStorage {
	return m.jobStorage
}

// Close shuts down both backends.
func (m *Manager) Close() error {
	var firstErr error
	if err := m.badgerDB.Close(); err != nil {
		firstErr = err
	}
	if err := m.sqliteDB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
