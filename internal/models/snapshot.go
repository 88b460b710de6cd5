package models

// SnapshotKind distinguishes the role of a stored image within a batch.
// New/Old label the side a capture came from; Create/Deleted mark stories
// present on only one side; ColorDiff/LcsDiff are computed diff overlays.
type SnapshotKind string

const (
	SnapshotKindNew       SnapshotKind = "New"
	SnapshotKindOld       SnapshotKind = "Old"
	SnapshotKindCreate    SnapshotKind = "Create"
	SnapshotKindDeleted   SnapshotKind = "Deleted"
	SnapshotKindColorDiff SnapshotKind = "ColorDiff"
	SnapshotKindLcsDiff   SnapshotKind = "LcsDiff"
)

// ParseSnapshotKind maps a stored string back to a SnapshotKind.
// Unknown values fall back to New, matching lenient reads of legacy rows.
func ParseSnapshotKind(s string) SnapshotKind {
	switch s {
	case string(SnapshotKindOld):
		return SnapshotKindOld
	case string(SnapshotKindCreate):
		return SnapshotKindCreate
	case string(SnapshotKindDeleted):
		return SnapshotKindDeleted
	case string(SnapshotKindColorDiff):
		return SnapshotKindColorDiff
	case string(SnapshotKindLcsDiff):
		return SnapshotKindLcsDiff
	default:
		return SnapshotKindNew
	}
}

// Snapshot is one persisted image row belonging to a batch.
type Snapshot struct {
	ID        string       `json:"id"`
	BatchID   string       `json:"batch_id"`
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	Kind      SnapshotKind `json:"snap_shot_type"`
	CreatedAt Timestamp    `json:"created_at"`
}

// BatchImage is the public projection of a Snapshot used in batch responses.
type BatchImage struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Image projects the snapshot into its response form.
func (s *Snapshot) Image() BatchImage {
	return BatchImage{
		Name:   s.Name,
		Path:   s.Path,
		Width:  s.Width,
		Height: s.Height,
	}
}

// RawImage is a captured or computed PNG held in memory. It is never
// persisted as a record; only its bytes reach disk via the asset writer.
type RawImage struct {
	Data   []byte
	Width  float64
	Height float64
	Kind   SnapshotKind
	Name   string
}
