package domain

// Meme represents an uploaded meme image with a generated ID.
type Meme struct {
	Tracked
	ID string `json:"id"`

	// Creator is the user ID of the uploader.
	Creator string `json:"creator"`

	// Image points at the stored image asset.
	Image string `json:"image"`
}
