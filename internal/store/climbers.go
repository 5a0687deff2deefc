package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

// Key prefixes for climber storage.
const (
	climberPrefix = "climber:" // climber:{name} → scalar record JSON
	climberKind   = "climber"
	climbersIdx   = "climbers" // reverse index namespace: idx:climbers:{field}:{value}:{name}
	albumsCrewIdx = "idx:albums:crew:"
	fieldSkills   = "skills"
	fieldTags     = "tags"
	fieldAchvs    = "achievements"
)

// climberSetFields lists the set-valued climber fields in storage order.
//
//nolint:gochecknoglobals // Static schema table.
var climberSetFields = []string{fieldSkills, fieldTags, fieldAchvs}

// climberRecord is the persisted scalar shape. Set-valued fields live in
// set sub-records, and level is never written.
type climberRecord struct {
	Name      string    `json:"name"`
	Locations []string  `json:"locations,omitempty"`
	Climbs    int       `json:"climbs"`
	FaceImage string    `json:"face_image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClimberPatch is a partial update of a climber's scalar fields.
// Nil fields are left untouched.
type ClimberPatch struct {
	Locations *[]string
	FaceImage *string
}

func climberDesired(c *domain.Climber, field string) []string {
	switch field {
	case fieldSkills:
		return c.Skills
	case fieldTags:
		return c.Tags
	case fieldAchvs:
		return c.Achievements
	}
	return nil
}

// CreateClimber creates a new climber, seeding set sub-records, reverse
// indexes, and global value indexes for every set-valued field.
// Returns AlreadyExists if the name is taken.
func (s *Store) CreateClimber(ctx context.Context, c *domain.Climber) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := climberPrefix + c.Name

	err := s.db.Update(func(txn *badger.Txn) error {
		taken, err := existsTxn(txn, key)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.AlreadyExistsf("climber %q already exists", c.Name)
		}

		now := time.Now()
		rec := climberRecord{
			Name:      c.Name,
			Locations: c.Locations,
			Climbs:    0,
			FaceImage: c.FaceImage,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if !c.CreatedAt.IsZero() {
			rec.CreatedAt = c.CreatedAt
		}
		if err := setJSONTxn(txn, key, rec); err != nil {
			return err
		}

		for _, field := range climberSetFields {
			for _, v := range climberDesired(c, field) {
				if err := addClimberMemberTxn(txn, c.Name, field, v); err != nil {
					return err
				}
			}
		}
		return nil
	})

	return storeErr(err)
}

// addClimberMemberTxn writes the three records behind one set membership:
// the set sub-record, the reverse index entry, and the global value index.
func addClimberMemberTxn(txn *badger.Txn, name, field, value string) error {
	if err := addMemberTxn(txn, setFieldPrefix(climberKind, name, field)+value); err != nil {
		return err
	}
	if err := addMemberTxn(txn, reverseIndexPrefix(climbersIdx, field, value)+name); err != nil {
		return err
	}
	// Global indexes keep every value ever used; they are never pruned.
	return addMemberTxn(txn, globalIndexKey(field, value))
}

// removeClimberMemberTxn removes the set sub-record and reverse index entry
// for one membership. The global index entry stays.
func removeClimberMemberTxn(txn *badger.Txn, name, field, value string) error {
	if err := removeMemberTxn(txn, setFieldPrefix(climberKind, name, field)+value); err != nil {
		return err
	}
	return removeMemberTxn(txn, reverseIndexPrefix(climbersIdx, field, value)+name)
}

// getClimberTxn resolves the full climber inside an open transaction:
// scalar record, set sub-records, visited locations, and recomputed level.
func getClimberTxn(txn *badger.Txn, name string) (*domain.Climber, error) {
	var rec climberRecord
	err := getJSONTxn(txn, climberPrefix+name, &rec)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.NotFoundf("climber %q not found", name)
	}
	if err != nil {
		return nil, err
	}

	c := &domain.Climber{
		Name:      rec.Name,
		Locations: rec.Locations,
		Climbs:    rec.Climbs,
		FaceImage: rec.FaceImage,
	}
	c.CreatedAt = rec.CreatedAt
	c.UpdatedAt = rec.UpdatedAt

	if c.Skills, err = scanSuffixesTxn(txn, setFieldPrefix(climberKind, name, fieldSkills)); err != nil {
		return nil, err
	}
	if c.Tags, err = scanSuffixesTxn(txn, setFieldPrefix(climberKind, name, fieldTags)); err != nil {
		return nil, err
	}
	if c.Achievements, err = scanSuffixesTxn(txn, setFieldPrefix(climberKind, name, fieldAchvs)); err != nil {
		return nil, err
	}

	visited, err := visitedLocationsTxn(txn, name)
	if err != nil {
		return nil, err
	}

	c.Level = domain.ComputeLevel(len(c.Skills), c.Climbs, len(c.Achievements), visited)
	return c, nil
}

// visitedLocationsTxn counts distinct non-empty locations across the albums
// whose crew contains the climber. Derived on demand, never cached.
func visitedLocationsTxn(txn *badger.Txn, name string) (int, error) {
	urls, err := scanSuffixesTxn(txn, albumsCrewIdx+name+":")
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool)
	for _, url := range urls {
		var rec albumRecord
		err := getJSONTxn(txn, albumPrefix+url, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			// Dangling reverse entry; cheap to tolerate, repaired by cleanup.
			continue
		}
		if err != nil {
			return 0, err
		}
		if rec.Location != "" {
			seen[rec.Location] = true
		}
	}
	return len(seen), nil
}

// GetClimber retrieves a climber with all relationship fields resolved and
// derived fields recomputed. Returns NotFound if missing.
func (s *Store) GetClimber(ctx context.Context, name string) (*domain.Climber, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var c *domain.Climber
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		c, err = getClimberTxn(txn, name)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return c, nil
}

// UpdateClimber applies a partial scalar update. Set-valued fields have
// their own Set* operations with diff-based index maintenance.
func (s *Store) UpdateClimber(ctx context.Context, name string, patch ClimberPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec climberRecord
		err := getJSONTxn(txn, climberPrefix+name, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("climber %q not found", name)
		}
		if err != nil {
			return err
		}

		if patch.Locations != nil {
			rec.Locations = *patch.Locations
		}
		if patch.FaceImage != nil {
			rec.FaceImage = *patch.FaceImage
		}
		rec.UpdatedAt = time.Now()

		return setJSONTxn(txn, climberPrefix+name, rec)
	})

	return storeErr(err)
}

// setClimberMembers replaces one set-valued field with desired, issuing
// exactly the member additions and removals the diff requires, all in one
// transaction.
func (s *Store) setClimberMembers(ctx context.Context, name, field string, desired []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec climberRecord
		err := getJSONTxn(txn, climberPrefix+name, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("climber %q not found", name)
		}
		if err != nil {
			return err
		}

		current, err := scanSuffixesTxn(txn, setFieldPrefix(climberKind, name, field))
		if err != nil {
			return err
		}

		added, removed := diffMembers(current, desired)
		for _, v := range added {
			if err := addClimberMemberTxn(txn, name, field, v); err != nil {
				return err
			}
		}
		for _, v := range removed {
			if err := removeClimberMemberTxn(txn, name, field, v); err != nil {
				return err
			}
		}

		rec.UpdatedAt = time.Now()
		return setJSONTxn(txn, climberPrefix+name, rec)
	})

	return storeErr(err)
}

// SetClimberSkills replaces the climber's skill set.
func (s *Store) SetClimberSkills(ctx context.Context, name string, skills []string) error {
	return s.setClimberMembers(ctx, name, fieldSkills, skills)
}

// SetClimberTags replaces the climber's tag set.
func (s *Store) SetClimberTags(ctx context.Context, name string, tags []string) error {
	return s.setClimberMembers(ctx, name, fieldTags, tags)
}

// SetClimberAchievements replaces the climber's achievement set.
func (s *Store) SetClimberAchievements(ctx context.Context, name string, achievements []string) error {
	return s.setClimberMembers(ctx, name, fieldAchvs, achievements)
}

// RenameClimber moves a climber to a new name, repointing every record that
// mentions the old one: set sub-records, reverse indexes, album crew sets,
// and ownership entries. The new key is fully constructed before anything
// under the old key is removed, so a failure partway leaves duplicated
// references rather than lost ones. Returns Conflict if the target exists.
func (s *Store) RenameClimber(ctx context.Context, oldName, newName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if oldName == newName {
		return apperrors.Conflict("new name equals current name")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec climberRecord
		err := getJSONTxn(txn, climberPrefix+oldName, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("climber %q not found", oldName)
		}
		if err != nil {
			return err
		}

		taken, err := existsTxn(txn, climberPrefix+newName)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflictf("climber %q already exists", newName)
		}

		// 1. New primary record, creation time preserved. The face image
		// reference follows the name; the file itself moves outside this
		// transaction.
		rec.Name = newName
		if rec.FaceImage != "" {
			rec.FaceImage = domain.FaceImageRef(newName)
		}
		rec.UpdatedAt = time.Now()
		if err := setJSONTxn(txn, climberPrefix+newName, rec); err != nil {
			return err
		}

		// 2+3. Move set sub-records and their reverse index entries.
		for _, field := range climberSetFields {
			members, err := scanSuffixesTxn(txn, setFieldPrefix(climberKind, oldName, field))
			if err != nil {
				return err
			}
			for _, v := range members {
				if err := addClimberMemberTxn(txn, newName, field, v); err != nil {
					return err
				}
				if err := removeClimberMemberTxn(txn, oldName, field, v); err != nil {
					return err
				}
			}
		}

		// 4. Rewrite album crew sets that reference the old name.
		urls, err := scanSuffixesTxn(txn, albumsCrewIdx+oldName+":")
		if err != nil {
			return err
		}
		for _, url := range urls {
			if err := addMemberTxn(txn, setFieldPrefix(albumKind, url, fieldCrew)+newName); err != nil {
				return err
			}
			if err := addMemberTxn(txn, albumsCrewIdx+newName+":"+url); err != nil {
				return err
			}
			if err := removeMemberTxn(txn, setFieldPrefix(albumKind, url, fieldCrew)+oldName); err != nil {
				return err
			}
			if err := removeMemberTxn(txn, albumsCrewIdx+oldName+":"+url); err != nil {
				return err
			}
		}

		// Ownership entries follow the key.
		if err := moveOwnershipTxn(txn, domain.KindClimber, oldName, newName); err != nil {
			return err
		}

		// 6. Old primary last, after every reference is repointed.
		return txn.Delete([]byte(climberPrefix + oldName))
	})

	return storeErr(err)
}

// DeleteClimber removes a climber, first stripping them from every album
// crew, then clearing set sub-records, reverse index entries, and
// ownership records.
func (s *Store) DeleteClimber(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		found, err := existsTxn(txn, climberPrefix+name)
		if err != nil {
			return err
		}
		if !found {
			return apperrors.NotFoundf("climber %q not found", name)
		}

		// Strip from album crews. Albums stay; only the membership goes.
		urls, err := scanSuffixesTxn(txn, albumsCrewIdx+name+":")
		if err != nil {
			return err
		}
		for _, url := range urls {
			if err := removeMemberTxn(txn, setFieldPrefix(albumKind, url, fieldCrew)+name); err != nil {
				return err
			}
			if err := removeMemberTxn(txn, albumsCrewIdx+name+":"+url); err != nil {
				return err
			}
		}

		// Clear set sub-records and reverse entries.
		for _, field := range climberSetFields {
			members, err := scanSuffixesTxn(txn, setFieldPrefix(climberKind, name, field))
			if err != nil {
				return err
			}
			for _, v := range members {
				if err := removeClimberMemberTxn(txn, name, field, v); err != nil {
					return err
				}
			}
		}

		if err := clearOwnershipTxn(txn, domain.KindClimber, name); err != nil {
			return err
		}

		return txn.Delete([]byte(climberPrefix + name))
	})

	return storeErr(err)
}

// ListClimbers returns all climbers, fully resolved, sorted by name.
func (s *Store) ListClimbers(ctx context.Context) ([]*domain.Climber, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var climbers []*domain.Climber
	err := s.db.View(func(txn *badger.Txn) error {
		names, err := scanSuffixesTxn(txn, climberPrefix)
		if err != nil {
			return err
		}
		for _, name := range names {
			c, err := getClimberTxn(txn, name)
			if err != nil {
				return err
			}
			climbers = append(climbers, c)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return climbers, nil
}

// listClimbersBy resolves the climbers referenced by one reverse index value.
func (s *Store) listClimbersBy(ctx context.Context, field, value string) ([]*domain.Climber, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var climbers []*domain.Climber
	err := s.db.View(func(txn *badger.Txn) error {
		names, err := scanSuffixesTxn(txn, reverseIndexPrefix(climbersIdx, field, value))
		if err != nil {
			return err
		}
		for _, name := range names {
			c, err := getClimberTxn(txn, name)
			if errors.Is(err, apperrors.ErrNotFound) {
				// Dangling index entry, skip.
				continue
			}
			if err != nil {
				return err
			}
			climbers = append(climbers, c)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return climbers, nil
}

// ListClimbersBySkill returns climbers holding the given skill.
func (s *Store) ListClimbersBySkill(ctx context.Context, skill string) ([]*domain.Climber, error) {
	return s.listClimbersBy(ctx, fieldSkills, skill)
}

// ListClimbersByTag returns climbers carrying the given tag.
func (s *Store) ListClimbersByTag(ctx context.Context, tag string) ([]*domain.Climber, error) {
	return s.listClimbersBy(ctx, fieldTags, tag)
}

// ListClimbersByAchievement returns climbers with the given achievement.
func (s *Store) ListClimbersByAchievement(ctx context.Context, achievement string) ([]*domain.Climber, error) {
	return s.listClimbersBy(ctx, fieldAchvs, achievement)
}

// listGlobalValues returns every value ever used for an indexed field.
func (s *Store) listGlobalValues(ctx context.Context, field string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var values []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		values, err = scanSuffixesTxn(txn, "idx:"+field+":all:")
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return values, nil
}

// AllSkills returns every skill ever used.
func (s *Store) AllSkills(ctx context.Context) ([]string, error) {
	return s.listGlobalValues(ctx, fieldSkills)
}

// AllTags returns every tag ever used.
func (s *Store) AllTags(ctx context.Context) ([]string, error) {
	return s.listGlobalValues(ctx, fieldTags)
}

// AllAchievements returns every achievement ever used.
func (s *Store) AllAchievements(ctx context.Context) ([]string, error) {
	return s.listGlobalValues(ctx, fieldAchvs)
}

// CountClimbers returns the number of climber records.
func (s *Store) CountClimbers(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		count, err = countPrefixTxn(txn, climberPrefix)
		return err
	})
	return count, storeErr(err)
}
