package models

// SnapShotBatchDTO is the relational row for one comparison run.
type SnapShotBatchDTO struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	CreatedAt           Timestamp `json:"created_at"`
	NewStoryBookVersion string    `json:"new_story_book_version"`
	OldStoryBookVersion string    `json:"old_story_book_version"`
}

// DiffImageSet groups the four images that describe one changed story.
type DiffImageSet struct {
	New       BatchImage `json:"new"`
	Old       BatchImage `json:"old"`
	ColorDiff BatchImage `json:"color_diff"`
	LcsDiff   BatchImage `json:"lcs_diff"`
}

// SnapShotBatch is the assembled API shape: the batch row plus its child
// snapshots grouped by role.
type SnapShotBatch struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	CreatedAt           Timestamp    `json:"created_at"`
	NewStoryBookVersion string       `json:"new_story_book_version"`
	OldStoryBookVersion string       `json:"old_story_book_version"`
	CreatedImagePaths   []BatchImage `json:"created_image_paths"`
	DeletedImagePaths   []BatchImage `json:"deleted_image_paths"`
	DiffImage           []DiffImageSet `json:"diff_image"`
}

// AssembleBatch joins a batch row with its snapshot rows. Snapshots of kind
// ColorDiff anchor the diff_image entries; the matching New, Old and LcsDiff
// rows are located by shared story name.
func AssembleBatch(dto *SnapShotBatchDTO, snapshots []Snapshot) *SnapShotBatch {
	batch := &SnapShotBatch{
		ID:                  dto.ID,
		Name:                dto.Name,
		CreatedAt:           dto.CreatedAt,
		NewStoryBookVersion: dto.NewStoryBookVersion,
		OldStoryBookVersion: dto.OldStoryBookVersion,
		CreatedImagePaths:   []BatchImage{},
		DeletedImagePaths:   []BatchImage{},
		DiffImage:           []DiffImageSet{},
	}

	byKindAndName := make(map[SnapshotKind]map[string]*Snapshot, 4)
	for i := range snapshots {
		s := &snapshots[i]
		if byKindAndName[s.Kind] == nil {
			byKindAndName[s.Kind] = make(map[string]*Snapshot)
		}
		if _, dup := byKindAndName[s.Kind][s.Name]; !dup {
			byKindAndName[s.Kind][s.Name] = s
		}
	}

	for i := range snapshots {
		s := &snapshots[i]
		switch s.Kind {
		case SnapshotKindCreate:
			batch.CreatedImagePaths = append(batch.CreatedImagePaths, s.Image())
		case SnapshotKindDeleted:
			batch.DeletedImagePaths = append(batch.DeletedImagePaths, s.Image())
		case SnapshotKindColorDiff:
			set := DiffImageSet{ColorDiff: s.Image()}
			if n, ok := byKindAndName[SnapshotKindNew][s.Name]; ok {
				set.New = n.Image()
			}
			if o, ok := byKindAndName[SnapshotKindOld][s.Name]; ok {
				set.Old = o.Image()
			}
			if l, ok := byKindAndName[SnapshotKindLcsDiff][s.Name]; ok {
				set.LcsDiff = l.Image()
			}
			batch.DiffImage = append(batch.DiffImage, set)
		}
	}

	return batch
}
