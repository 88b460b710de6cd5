package models

// CaptureDescriptor names one story to screenshot: the iframe URL to load,
// the stable story id used for pairing, and which side it belongs to.
type CaptureDescriptor struct {
	URL  string
	Name string
	Kind SnapshotKind
}

// CaptureResult is the per-descriptor outcome of a capture run. Exactly one
// of Image or Err is set; Name is always the descriptor's story id.
type CaptureResult struct {
	Name  string
	Image *RawImage
	Err   error
}
