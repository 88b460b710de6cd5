package interfaces

import (
	"context"

	"github.com/ternarybob/snapdiff/internal/models"
)

// Capturer renders stories in a browser and returns raw screenshots. The
// result slice is in 1:1 correspondence with the input descriptors; per
// descriptor failures are carried as CaptureResult.Err, not returned here.
type Capturer interface {
	Capture(ctx context.Context, descriptors []models.CaptureDescriptor) ([]models.CaptureResult, error)
}
