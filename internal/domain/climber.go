package domain

// Climber represents a crew member, keyed by their unique name.
//
// Skills, Tags, and Achievements live in set sub-records keyed off the
// climber's name; the store resolves them on every read. Level is never
// stored; it is recomputed from current relationship cardinalities.
type Climber struct {
	Tracked
	Name string `json:"name"`

	// Locations is the climber's home-area tags. Order is meaningful
	// (primary area first), so it is stored inline, not as a set record.
	Locations []string `json:"locations,omitempty"`

	// Climbs counts albums whose crew contains this climber.
	// Maintained transactionally with crew edits.
	Climbs int `json:"climbs"`

	// FaceImage points at the stored face asset, empty if none uploaded.
	FaceImage string `json:"face_image,omitempty"`

	// Set-valued relationship fields, resolved from set records on read.
	Skills       []string `json:"skills"`
	Tags         []string `json:"tags"`
	Achievements []string `json:"achievements"`

	// Level is derived on every read, never persisted.
	Level LevelBreakdown `json:"level"`

	// IsNew marks climbers whose earliest album appearance falls inside
	// the trailing newcomer window. Populated by the newcomer sweep.
	IsNew bool `json:"is_new,omitempty"`
}

// FaceImageID derives the stored filename for a climber's face image.
// Climber names are store-key safe but may contain spaces; the
// filesystem name collapses them.
func FaceImageID(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == ' ' || r == '/' {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// FaceImageRef is the record reference for a climber's face image.
func FaceImageRef(name string) string {
	return FaceImageID(name) + ".jpg"
}
