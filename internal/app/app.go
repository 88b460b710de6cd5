package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/common"
	"github.com/ternarybob/snapdiff/internal/handlers"
	"github.com/ternarybob/snapdiff/internal/interfaces"
	"github.com/ternarybob/snapdiff/internal/services/assets"
	"github.com/ternarybob/snapdiff/internal/services/capture"
	"github.com/ternarybob/snapdiff/internal/services/compare"
	"github.com/ternarybob/snapdiff/internal/services/gallery"
	"github.com/ternarybob/snapdiff/internal/services/snapshot"
	"github.com/ternarybob/snapdiff/internal/storage"
)

// App holds every constructed component and wires them together.
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Storage interfaces.StorageManager

	SnapshotService *snapshot.Service
	AssetWriter     *assets.Writer

	APIHandler      *handlers.APIHandler
	SnapshotHandler *handlers.SnapshotHandler
	JobHandler      *handlers.JobHandler
	AdminHandler    *handlers.AdminHandler
}

// New builds the application graph from configuration.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := storage.NewManager(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	capturer, err := capture.NewCapturer(&config.Capture, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize capturer: %w", err)
	}

	writer := assets.NewWriter(config.Assets.Folder, logger)
	snapshotService := snapshot.NewService(
		storageManager.BatchStorage(),
		storageManager.JobStorage(),
		gallery.NewIndexer(logger),
		capturer,
		compare.NewEngine(logger),
		writer,
		logger,
	)

	return &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		SnapshotService: snapshotService,
		AssetWriter:     writer,
		APIHandler:      handlers.NewAPIHandler(logger),
		SnapshotHandler: handlers.NewSnapshotHandler(snapshotService, logger),
		JobHandler:      handlers.NewJobHandler(snapshotService, logger),
		AdminHandler:    handlers.NewAdminHandler(snapshotService, logger),
	}, nil
}

// Close releases application resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
