package domain

// ResourceKind identifies the kind of resource tracked by the ownership ledger.
// The ledger is parameterized over this closed enumeration instead of branching
// on entity types.
type ResourceKind string

const (
	// KindAlbum is a photo album, keyed by its external URL.
	KindAlbum ResourceKind = "album"
	// KindClimber is a crew member, keyed by name.
	KindClimber ResourceKind = "climber"
	// KindLocation is a geographic location, keyed by name.
	KindLocation ResourceKind = "location"
	// KindMeme is a meme image, keyed by generated ID.
	KindMeme ResourceKind = "meme"
)

// AllResourceKinds lists every ownable resource kind.
//
//nolint:gochecknoglobals // Static enumeration of the closed kind set.
var AllResourceKinds = []ResourceKind{KindAlbum, KindClimber, KindLocation, KindMeme}

// Valid reports whether the kind is a member of the closed enumeration.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindAlbum, KindClimber, KindLocation, KindMeme:
		return true
	}
	return false
}

// MustHaveOwner reports whether resources of this kind are required to keep
// at least one owner. Removing the last owner of such a resource is rejected;
// climbers and locations are community records and may be unowned.
func (k ResourceKind) MustHaveOwner() bool {
	return k == KindAlbum || k == KindMeme
}

// String returns the kind tag used in store keys.
func (k ResourceKind) String() string {
	return string(k)
}
