package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

// Key prefixes for album storage.
const (
	albumPrefix  = "album:" // album:{url} → scalar record JSON
	albumKind    = "album"
	fieldCrew    = "crew"
	albumsLocIdx = "idx:albums:location:"
)

// albumRecord is the persisted scalar shape. Crew lives in a set
// sub-record keyed by the album URL.
type albumRecord struct {
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AlbumPatch is a partial update of an album's scalar fields.
// Nil fields are left untouched.
type AlbumPatch struct {
	Title       *string
	Description *string
	Date        *string
	CoverImage  *string
	Location    *string
}

// adjustClimbsTxn shifts a climber's climb count by delta inside the open
// transaction, keeping the count equal to the number of albums whose crew
// contains them.
func adjustClimbsTxn(txn *badger.Txn, name string, delta int) error {
	var rec climberRecord
	err := getJSONTxn(txn, climberPrefix+name, &rec)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.NotFoundf("climber %q not found", name)
	}
	if err != nil {
		return err
	}

	rec.Climbs += delta
	if rec.Climbs < 0 {
		rec.Climbs = 0 // Safety guard.
	}
	rec.UpdatedAt = time.Now()

	return setJSONTxn(txn, climberPrefix+name, rec)
}

// addCrewMemberTxn writes the crew membership pair and bumps the member's
// climb count. The climber must exist.
func addCrewMemberTxn(txn *badger.Txn, url, name string) error {
	if err := addMemberTxn(txn, setFieldPrefix(albumKind, url, fieldCrew)+name); err != nil {
		return err
	}
	if err := addMemberTxn(txn, albumsCrewIdx+name+":"+url); err != nil {
		return err
	}
	return adjustClimbsTxn(txn, name, 1)
}

// removeCrewMemberTxn removes the crew membership pair and decrements the
// member's climb count. Missing climbers are tolerated so album cleanup
// can proceed past dangling references.
func removeCrewMemberTxn(txn *badger.Txn, url, name string) error {
	if err := removeMemberTxn(txn, setFieldPrefix(albumKind, url, fieldCrew)+name); err != nil {
		return err
	}
	if err := removeMemberTxn(txn, albumsCrewIdx+name+":"+url); err != nil {
		return err
	}
	err := adjustClimbsTxn(txn, name, -1)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

// verifyLocationTxn checks the referenced location exists.
func verifyLocationTxn(txn *badger.Txn, name string) error {
	found, err := existsTxn(txn, locationPrefix+name)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NotFoundf("location %q not found", name)
	}
	return nil
}

// CreateAlbum creates a new album keyed by URL, seeding the crew set, the
// per-member reverse index and climb counts, and the location index.
// Crew members and the referenced location must already exist.
func (s *Store) CreateAlbum(ctx context.Context, a *domain.Album) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := albumPrefix + a.URL

	err := s.db.Update(func(txn *badger.Txn) error {
		taken, err := existsTxn(txn, key)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.AlreadyExistsf("album %q already exists", a.URL)
		}

		if a.Location != "" {
			if err := verifyLocationTxn(txn, a.Location); err != nil {
				return err
			}
		}

		now := time.Now()
		rec := albumRecord{
			URL:         a.URL,
			Title:       a.Title,
			Description: a.Description,
			Date:        a.Date,
			CoverImage:  a.CoverImage,
			Location:    a.Location,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if !a.CreatedAt.IsZero() {
			rec.CreatedAt = a.CreatedAt
		}
		if err := setJSONTxn(txn, key, rec); err != nil {
			return err
		}

		for _, name := range a.Crew {
			if err := addCrewMemberTxn(txn, a.URL, name); err != nil {
				return err
			}
		}

		if a.Location != "" {
			if err := addMemberTxn(txn, albumsLocIdx+a.Location+":"+a.URL); err != nil {
				return err
			}
		}
		return nil
	})

	return storeErr(err)
}

// getAlbumTxn resolves the full album inside an open transaction.
func getAlbumTxn(txn *badger.Txn, url string) (*domain.Album, error) {
	var rec albumRecord
	err := getJSONTxn(txn, albumPrefix+url, &rec)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.NotFoundf("album %q not found", url)
	}
	if err != nil {
		return nil, err
	}

	a := &domain.Album{
		URL:         rec.URL,
		Title:       rec.Title,
		Description: rec.Description,
		Date:        rec.Date,
		CoverImage:  rec.CoverImage,
		Location:    rec.Location,
	}
	a.CreatedAt = rec.CreatedAt
	a.UpdatedAt = rec.UpdatedAt

	if a.Crew, err = scanSuffixesTxn(txn, setFieldPrefix(albumKind, url, fieldCrew)); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAlbum retrieves an album with its crew resolved.
// Returns NotFound if missing.
func (s *Store) GetAlbum(ctx context.Context, url string) (*domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var a *domain.Album
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		a, err = getAlbumTxn(txn, url)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return a, nil
}

// UpdateAlbum applies a partial scalar update. A location change moves the
// album's entry in the location index within the same transaction.
func (s *Store) UpdateAlbum(ctx context.Context, url string, patch AlbumPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec albumRecord
		err := getJSONTxn(txn, albumPrefix+url, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("album %q not found", url)
		}
		if err != nil {
			return err
		}

		if patch.Title != nil {
			rec.Title = *patch.Title
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}
		if patch.Date != nil {
			rec.Date = *patch.Date
		}
		if patch.CoverImage != nil {
			rec.CoverImage = *patch.CoverImage
		}
		if patch.Location != nil && *patch.Location != rec.Location {
			if *patch.Location != "" {
				if err := verifyLocationTxn(txn, *patch.Location); err != nil {
					return err
				}
				if err := addMemberTxn(txn, albumsLocIdx+*patch.Location+":"+url); err != nil {
					return err
				}
			}
			if rec.Location != "" {
				if err := removeMemberTxn(txn, albumsLocIdx+rec.Location+":"+url); err != nil {
					return err
				}
			}
			rec.Location = *patch.Location
		}

		rec.UpdatedAt = time.Now()
		return setJSONTxn(txn, albumPrefix+url, rec)
	})

	return storeErr(err)
}

// SetAlbumCrew replaces the album's crew with desired, issuing exactly the
// membership additions and removals the diff requires and adjusting each
// affected climber's climb count, all in one transaction.
func (s *Store) SetAlbumCrew(ctx context.Context, url string, desired []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec albumRecord
		err := getJSONTxn(txn, albumPrefix+url, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("album %q not found", url)
		}
		if err != nil {
			return err
		}

		current, err := scanSuffixesTxn(txn, setFieldPrefix(albumKind, url, fieldCrew))
		if err != nil {
			return err
		}

		added, removed := diffMembers(current, desired)
		for _, name := range added {
			if err := addCrewMemberTxn(txn, url, name); err != nil {
				return err
			}
		}
		for _, name := range removed {
			if err := removeCrewMemberTxn(txn, url, name); err != nil {
				return err
			}
		}

		rec.UpdatedAt = time.Now()
		return setJSONTxn(txn, albumPrefix+url, rec)
	})

	return storeErr(err)
}

// DeleteAlbum removes an album, decrementing every crew member's climb
// count, clearing the crew set and its reverse entries, the location index
// entry, and ownership records.
func (s *Store) DeleteAlbum(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec albumRecord
		err := getJSONTxn(txn, albumPrefix+url, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("album %q not found", url)
		}
		if err != nil {
			return err
		}

		crew, err := scanSuffixesTxn(txn, setFieldPrefix(albumKind, url, fieldCrew))
		if err != nil {
			return err
		}
		for _, name := range crew {
			if err := removeCrewMemberTxn(txn, url, name); err != nil {
				return err
			}
		}

		if rec.Location != "" {
			if err := removeMemberTxn(txn, albumsLocIdx+rec.Location+":"+url); err != nil {
				return err
			}
		}

		if err := clearOwnershipTxn(txn, domain.KindAlbum, url); err != nil {
			return err
		}

		return txn.Delete([]byte(albumPrefix + url))
	})

	return storeErr(err)
}

// ListAlbums returns all albums, crews resolved, sorted by URL.
func (s *Store) ListAlbums(ctx context.Context) ([]*domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var albums []*domain.Album
	err := s.db.View(func(txn *badger.Txn) error {
		urls, err := scanSuffixesTxn(txn, albumPrefix)
		if err != nil {
			return err
		}
		for _, url := range urls {
			a, err := getAlbumTxn(txn, url)
			if err != nil {
				return err
			}
			albums = append(albums, a)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return albums, nil
}

// ListAlbumsByCrewMember returns the albums whose crew contains name.
func (s *Store) ListAlbumsByCrewMember(ctx context.Context, name string) ([]*domain.Album, error) {
	return s.listAlbumsByIndex(ctx, albumsCrewIdx+name+":")
}

// ListAlbumsByLocation returns the albums referencing the location.
func (s *Store) ListAlbumsByLocation(ctx context.Context, location string) ([]*domain.Album, error) {
	return s.listAlbumsByIndex(ctx, albumsLocIdx+location+":")
}

func (s *Store) listAlbumsByIndex(ctx context.Context, prefix string) ([]*domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var albums []*domain.Album
	err := s.db.View(func(txn *badger.Txn) error {
		urls, err := scanSuffixesTxn(txn, prefix)
		if err != nil {
			return err
		}
		for _, url := range urls {
			a, err := getAlbumTxn(txn, url)
			if errors.Is(err, apperrors.ErrNotFound) {
				// Dangling index entry, skip.
				continue
			}
			if err != nil {
				return err
			}
			albums = append(albums, a)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return albums, nil
}

// CountAlbums returns the number of album records.
func (s *Store) CountAlbums(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		count, err = countPrefixTxn(txn, albumPrefix)
		return err
	})
	return count, storeErr(err)
}
