package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

// Key prefixes for location storage.
const (
	locationPrefix = "location:" // location:{name} → scalar record JSON
	locationKind   = "location"
	locationsIdx   = "locations" // idx:locations:attribute:{attr}:{name}
	fieldAttrs     = "attributes"
)

// locationRecord is the persisted scalar shape. Attributes live in a set
// sub-record keyed by the location name.
type locationRecord struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	Approach    string              `json:"approach,omitempty"`
	Markers     []domain.MapMarker  `json:"markers,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// LocationPatch is a partial update of a location's scalar fields.
// Nil fields are left untouched.
type LocationPatch struct {
	Description *string
	Coordinates *domain.Coordinates
	Approach    *string
	Markers     *[]domain.MapMarker
}

// addLocationAttrTxn writes the set sub-record, reverse index entry, and
// global attribute index for one attribute membership.
func addLocationAttrTxn(txn *badger.Txn, name, attr string) error {
	if err := addMemberTxn(txn, setFieldPrefix(locationKind, name, fieldAttrs)+attr); err != nil {
		return err
	}
	if err := addMemberTxn(txn, reverseIndexPrefix(locationsIdx, "attribute", attr)+name); err != nil {
		return err
	}
	return addMemberTxn(txn, globalIndexKey(fieldAttrs, attr))
}

// removeLocationAttrTxn removes the sub-record and reverse entry for one
// attribute membership. The global index entry stays.
func removeLocationAttrTxn(txn *badger.Txn, name, attr string) error {
	if err := removeMemberTxn(txn, setFieldPrefix(locationKind, name, fieldAttrs)+attr); err != nil {
		return err
	}
	return removeMemberTxn(txn, reverseIndexPrefix(locationsIdx, "attribute", attr)+name)
}

// CreateLocation creates a new location, seeding the attribute set and its
// indexes. Returns AlreadyExists if the name is taken.
func (s *Store) CreateLocation(ctx context.Context, l *domain.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := locationPrefix + l.Name

	err := s.db.Update(func(txn *badger.Txn) error {
		taken, err := existsTxn(txn, key)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.AlreadyExistsf("location %q already exists", l.Name)
		}

		now := time.Now()
		rec := locationRecord{
			Name:        l.Name,
			Description: l.Description,
			Coordinates: l.Coordinates,
			Approach:    l.Approach,
			Markers:     l.Markers,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if !l.CreatedAt.IsZero() {
			rec.CreatedAt = l.CreatedAt
		}
		if err := setJSONTxn(txn, key, rec); err != nil {
			return err
		}

		for _, attr := range l.Attributes {
			if err := addLocationAttrTxn(txn, l.Name, attr); err != nil {
				return err
			}
		}
		return nil
	})

	return storeErr(err)
}

// getLocationTxn resolves the full location inside an open transaction.
func getLocationTxn(txn *badger.Txn, name string) (*domain.Location, error) {
	var rec locationRecord
	err := getJSONTxn(txn, locationPrefix+name, &rec)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.NotFoundf("location %q not found", name)
	}
	if err != nil {
		return nil, err
	}

	l := &domain.Location{
		Name:        rec.Name,
		Description: rec.Description,
		Coordinates: rec.Coordinates,
		Approach:    rec.Approach,
		Markers:     rec.Markers,
	}
	l.CreatedAt = rec.CreatedAt
	l.UpdatedAt = rec.UpdatedAt

	if l.Attributes, err = scanSuffixesTxn(txn, setFieldPrefix(locationKind, name, fieldAttrs)); err != nil {
		return nil, err
	}
	return l, nil
}

// GetLocation retrieves a location with its attributes resolved.
// Returns NotFound if missing.
func (s *Store) GetLocation(ctx context.Context, name string) (*domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var l *domain.Location
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		l, err = getLocationTxn(txn, name)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return l, nil
}

// UpdateLocation applies a partial scalar update.
func (s *Store) UpdateLocation(ctx context.Context, name string, patch LocationPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec locationRecord
		err := getJSONTxn(txn, locationPrefix+name, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("location %q not found", name)
		}
		if err != nil {
			return err
		}

		if patch.Description != nil {
			rec.Description = *patch.Description
		}
		if patch.Coordinates != nil {
			rec.Coordinates = patch.Coordinates
		}
		if patch.Approach != nil {
			rec.Approach = *patch.Approach
		}
		if patch.Markers != nil {
			rec.Markers = *patch.Markers
		}
		rec.UpdatedAt = time.Now()

		return setJSONTxn(txn, locationPrefix+name, rec)
	})

	return storeErr(err)
}

// SetLocationAttributes replaces the location's attribute set using the
// diff protocol.
func (s *Store) SetLocationAttributes(ctx context.Context, name string, desired []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec locationRecord
		err := getJSONTxn(txn, locationPrefix+name, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("location %q not found", name)
		}
		if err != nil {
			return err
		}

		current, err := scanSuffixesTxn(txn, setFieldPrefix(locationKind, name, fieldAttrs))
		if err != nil {
			return err
		}

		added, removed := diffMembers(current, desired)
		for _, attr := range added {
			if err := addLocationAttrTxn(txn, name, attr); err != nil {
				return err
			}
		}
		for _, attr := range removed {
			if err := removeLocationAttrTxn(txn, name, attr); err != nil {
				return err
			}
		}

		rec.UpdatedAt = time.Now()
		return setJSONTxn(txn, locationPrefix+name, rec)
	})

	return storeErr(err)
}

// RenameLocation moves a location to a new name, repointing its attribute
// records, every album's location field and index entry, and ownership
// records. The new key is fully constructed before the old one is removed.
// Returns Conflict if the target exists.
func (s *Store) RenameLocation(ctx context.Context, oldName, newName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if oldName == newName {
		return apperrors.Conflict("new name equals current name")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec locationRecord
		err := getJSONTxn(txn, locationPrefix+oldName, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("location %q not found", oldName)
		}
		if err != nil {
			return err
		}

		taken, err := existsTxn(txn, locationPrefix+newName)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflictf("location %q already exists", newName)
		}

		// New primary record, creation time preserved.
		rec.Name = newName
		rec.UpdatedAt = time.Now()
		if err := setJSONTxn(txn, locationPrefix+newName, rec); err != nil {
			return err
		}

		// Move attribute sub-records and reverse entries.
		attrs, err := scanSuffixesTxn(txn, setFieldPrefix(locationKind, oldName, fieldAttrs))
		if err != nil {
			return err
		}
		for _, attr := range attrs {
			if err := addLocationAttrTxn(txn, newName, attr); err != nil {
				return err
			}
			if err := removeLocationAttrTxn(txn, oldName, attr); err != nil {
				return err
			}
		}

		// Rewrite every album that references the old name.
		urls, err := scanSuffixesTxn(txn, albumsLocIdx+oldName+":")
		if err != nil {
			return err
		}
		for _, url := range urls {
			var album albumRecord
			err := getJSONTxn(txn, albumPrefix+url, &album)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			album.Location = newName
			album.UpdatedAt = time.Now()
			if err := setJSONTxn(txn, albumPrefix+url, album); err != nil {
				return err
			}
			if err := addMemberTxn(txn, albumsLocIdx+newName+":"+url); err != nil {
				return err
			}
			if err := removeMemberTxn(txn, albumsLocIdx+oldName+":"+url); err != nil {
				return err
			}
		}

		if err := moveOwnershipTxn(txn, domain.KindLocation, oldName, newName); err != nil {
			return err
		}

		// Old primary last, after every reference is repointed.
		return txn.Delete([]byte(locationPrefix + oldName))
	})

	return storeErr(err)
}

// DeleteLocation removes a location, clearing every album's reference to
// it, its attribute records, and ownership records.
func (s *Store) DeleteLocation(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		found, err := existsTxn(txn, locationPrefix+name)
		if err != nil {
			return err
		}
		if !found {
			return apperrors.NotFoundf("location %q not found", name)
		}

		// Albums drop their canonical reference; the albums themselves stay.
		urls, err := scanSuffixesTxn(txn, albumsLocIdx+name+":")
		if err != nil {
			return err
		}
		for _, url := range urls {
			var album albumRecord
			err := getJSONTxn(txn, albumPrefix+url, &album)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			album.Location = ""
			album.UpdatedAt = time.Now()
			if err := setJSONTxn(txn, albumPrefix+url, album); err != nil {
				return err
			}
			if err := removeMemberTxn(txn, albumsLocIdx+name+":"+url); err != nil {
				return err
			}
		}

		attrs, err := scanSuffixesTxn(txn, setFieldPrefix(locationKind, name, fieldAttrs))
		if err != nil {
			return err
		}
		for _, attr := range attrs {
			if err := removeLocationAttrTxn(txn, name, attr); err != nil {
				return err
			}
		}

		if err := clearOwnershipTxn(txn, domain.KindLocation, name); err != nil {
			return err
		}

		return txn.Delete([]byte(locationPrefix + name))
	})

	return storeErr(err)
}

// ListLocations returns all locations, attributes resolved, sorted by name.
func (s *Store) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var locations []*domain.Location
	err := s.db.View(func(txn *badger.Txn) error {
		names, err := scanSuffixesTxn(txn, locationPrefix)
		if err != nil {
			return err
		}
		for _, name := range names {
			l, err := getLocationTxn(txn, name)
			if err != nil {
				return err
			}
			locations = append(locations, l)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return locations, nil
}

// ListLocationsByAttribute returns the locations carrying the attribute.
func (s *Store) ListLocationsByAttribute(ctx context.Context, attr string) ([]*domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var locations []*domain.Location
	err := s.db.View(func(txn *badger.Txn) error {
		names, err := scanSuffixesTxn(txn, reverseIndexPrefix(locationsIdx, "attribute", attr))
		if err != nil {
			return err
		}
		for _, name := range names {
			l, err := getLocationTxn(txn, name)
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			locations = append(locations, l)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return locations, nil
}

// AllAttributes returns every location attribute ever used.
func (s *Store) AllAttributes(ctx context.Context) ([]string, error) {
	return s.listGlobalValues(ctx, fieldAttrs)
}

// CountLocations returns the number of location records.
func (s *Store) CountLocations(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		count, err = countPrefixTxn(txn, locationPrefix)
		return err
	})
	return count, storeErr(err)
}
