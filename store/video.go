package store

// Video is a registered local video file.
type Video struct {
	ID        string
	Name      string
	Path      string
	SizeBytes int64
	CreatedTs int64
	UpdatedTs int64
}

// FindVideo filters video lookups. At least one field must be set.
type FindVideo struct {
	ID   *string
	Path *string
}
