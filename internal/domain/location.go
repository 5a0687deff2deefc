package domain

// Coordinates is an optional lat/lng pair for a location.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapMarker is a custom point of interest attached to a location
// (parking, wall sector, water source...).
type MapMarker struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// Location represents a climbing area, keyed by its unique name.
// Attributes is a set sub-record resolved on read and mirrored into the
// attribute reverse index.
type Location struct {
	Tracked
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`

	// Approach holds free-text approach notes.
	Approach string `json:"approach,omitempty"`

	Markers []MapMarker `json:"markers,omitempty"`

	// Attributes is the set of arbitrary descriptors ("sandstone",
	// "kid-friendly"), resolved from the attribute set record on read.
	Attributes []string `json:"attributes"`
}
