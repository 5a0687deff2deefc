package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

// MigrationReport summarizes one migration run. Routines never abort on a
// single bad record: failures are logged, counted, and skipped so the
// migration keeps making forward progress.
type MigrationReport struct {
	RunID    string `json:"run_id"`
	Routine  string `json:"routine"`
	Examined int    `json:"examined"`
	Changed  int    `json:"changed"`
	Failed   int    `json:"failed"`
}

func newReport(routine string) *MigrationReport {
	return &MigrationReport{
		RunID:   uuid.NewString(),
		Routine: routine,
	}
}

// waitLimiter blocks on the migration throttle, if one is configured.
func waitLimiter(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

func (s *Store) warnMigration(routine, key string, err error) {
	if s.logger != nil {
		s.logger.Warn("migration: skipping record", "routine", routine, "key", key, "error", err)
	}
}

// getRawTxn reads the raw value bytes at key.
func getRawTxn(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// scanKeys collects primary-record key suffixes for a prefix outside any
// write transaction, so the per-record rewrites stay small.
func (s *Store) scanKeys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		keys, err = scanSuffixesTxn(txn, prefix)
		return err
	})
	return keys, storeErr(err)
}

// legacyMembers extracts a legacy inline string array from a decoded
// record map. Returns nil when the field is absent or already converted.
func legacyMembers(raw map[string]any, field string) []string {
	arr, ok := raw[field].([]any)
	if !ok {
		return nil
	}
	members := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok && s != "" {
			members = append(members, s)
		}
	}
	return members
}

// MigrateInlineSets converts legacy inline-array fields into set
// sub-records with reverse and global indexes: climber skills, tags and
// achievements, album crews, and location attributes. Records already in
// set form are skipped, so the routine is safe to re-run.
//
// Inline crew conversion does not touch climb counts; run
// RecalculateClimbs afterwards to settle them.
func (s *Store) MigrateInlineSets(ctx context.Context, limiter *rate.Limiter) (*MigrationReport, error) {
	report := newReport("inline-sets")

	// Climbers: skills / tags / achievements.
	names, err := s.scanKeys(climberPrefix)
	if err != nil {
		return report, err
	}
	for _, name := range names {
		if err := waitLimiter(ctx, limiter); err != nil {
			return report, err
		}
		report.Examined++

		err := s.db.Update(func(txn *badger.Txn) error {
			data, err := getRawTxn(txn, climberPrefix+name)
			if err != nil {
				return err
			}
			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				return err
			}

			converted := false
			for _, field := range climberSetFields {
				for _, v := range legacyMembers(raw, field) {
					if err := addClimberMemberTxn(txn, name, field, v); err != nil {
						return err
					}
					converted = true
				}
				if _, ok := raw[field]; ok {
					converted = true
				}
			}
			if !converted {
				return nil
			}

			// Typed re-marshal drops the inline arrays.
			var rec climberRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			report.Changed++
			return setJSONTxn(txn, climberPrefix+name, rec)
		})
		if err != nil {
			report.Failed++
			s.warnMigration(report.Routine, climberPrefix+name, err)
		}
	}

	// Albums: crew.
	urls, err := s.scanKeys(albumPrefix)
	if err != nil {
		return report, err
	}
	for _, url := range urls {
		if err := waitLimiter(ctx, limiter); err != nil {
			return report, err
		}
		report.Examined++

		err := s.db.Update(func(txn *badger.Txn) error {
			data, err := getRawTxn(txn, albumPrefix+url)
			if err != nil {
				return err
			}
			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				return err
			}
			if _, ok := raw[fieldCrew]; !ok {
				return nil
			}

			for _, name := range legacyMembers(raw, fieldCrew) {
				if err := addMemberTxn(txn, setFieldPrefix(albumKind, url, fieldCrew)+name); err != nil {
					return err
				}
				if err := addMemberTxn(txn, albumsCrewIdx+name+":"+url); err != nil {
					return err
				}
			}

			var rec albumRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			report.Changed++
			return setJSONTxn(txn, albumPrefix+url, rec)
		})
		if err != nil {
			report.Failed++
			s.warnMigration(report.Routine, albumPrefix+url, err)
		}
	}

	// Locations: attributes.
	locNames, err := s.scanKeys(locationPrefix)
	if err != nil {
		return report, err
	}
	for _, name := range locNames {
		if err := waitLimiter(ctx, limiter); err != nil {
			return report, err
		}
		report.Examined++

		err := s.db.Update(func(txn *badger.Txn) error {
			data, err := getRawTxn(txn, locationPrefix+name)
			if err != nil {
				return err
			}
			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				return err
			}
			if _, ok := raw[fieldAttrs]; !ok {
				return nil
			}

			for _, attr := range legacyMembers(raw, fieldAttrs) {
				if err := addLocationAttrTxn(txn, name, attr); err != nil {
					return err
				}
			}

			var rec locationRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			report.Changed++
			return setJSONTxn(txn, locationPrefix+name, rec)
		})
		if err != nil {
			report.Failed++
			s.warnMigration(report.Routine, locationPrefix+name, err)
		}
	}

	return report, nil
}

// MigrateStoredLevels removes persisted level fields from climber records.
// Levels are recomputed on every read; a stored value is stale data.
// Records without the field are skipped.
func (s *Store) MigrateStoredLevels(ctx context.Context, limiter *rate.Limiter) (*MigrationReport, error) {
	report := newReport("stored-levels")

	names, err := s.scanKeys(climberPrefix)
	if err != nil {
		return report, err
	}
	for _, name := range names {
		if err := waitLimiter(ctx, limiter); err != nil {
			return report, err
		}
		report.Examined++

		err := s.db.Update(func(txn *badger.Txn) error {
			data, err := getRawTxn(txn, climberPrefix+name)
			if err != nil {
				return err
			}
			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				return err
			}
			if _, ok := raw["level"]; !ok {
				return nil
			}

			var rec climberRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			report.Changed++
			return setJSONTxn(txn, climberPrefix+name, rec)
		})
		if err != nil {
			report.Failed++
			s.warnMigration(report.Routine, climberPrefix+name, err)
		}
	}

	return report, nil
}

// MigrateOwnershipSets rewrites ownership records from the legacy
// single-value representation (own:{kind}:{key} → userID) into mirrored
// set records. Legacy records are recognized by their non-empty value;
// set-form member keys carry empty values.
func (s *Store) MigrateOwnershipSets(ctx context.Context, limiter *rate.Limiter) (*MigrationReport, error) {
	report := newReport("ownership-sets")

	type legacyOwner struct {
		key    string
		userID string
	}

	var legacy []legacyOwner
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(ownPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(ownPrefix)); it.ValidForPrefix([]byte(ownPrefix)); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if len(val) == 0 {
				continue // Already set form.
			}
			legacy = append(legacy, legacyOwner{
				key:    string(item.Key()),
				userID: string(val),
			})
		}
		return nil
	})
	if err != nil {
		return report, storeErr(err)
	}

	for _, l := range legacy {
		if err := waitLimiter(ctx, limiter); err != nil {
			return report, err
		}
		report.Examined++

		// own:{kind}:{resourceKey}. The kind tag never contains colons,
		// the resource key may.
		rest := strings.TrimPrefix(l.key, ownPrefix)
		kindTag, resourceKey, ok := strings.Cut(rest, ":")
		kind := domain.ResourceKind(kindTag)
		if !ok || !kind.Valid() {
			report.Failed++
			s.warnMigration(report.Routine, l.key, apperrors.Validation("malformed legacy ownership key"))
			continue
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			if err := addOwnerTxn(txn, kind, resourceKey, l.userID); err != nil {
				return err
			}
			return txn.Delete([]byte(l.key))
		})
		if err != nil {
			report.Failed++
			s.warnMigration(report.Routine, l.key, err)
			continue
		}
		report.Changed++
	}

	return report, nil
}

// AssignUnownedResources gives every currently-unowned resource of the
// kind to the designated admin account. Re-running is a no-op since the
// resources are no longer unowned.
func (s *Store) AssignUnownedResources(ctx context.Context, kind domain.ResourceKind, adminID string, limiter *rate.Limiter) (*MigrationReport, error) {
	report := newReport("assign-unowned")

	if err := checkKind(kind); err != nil {
		return report, err
	}
	if _, err := s.GetUser(ctx, adminID); err != nil {
		return report, err
	}

	unowned, err := s.UnownedResources(ctx, kind)
	if err != nil {
		return report, err
	}

	for _, key := range unowned {
		if err := waitLimiter(ctx, limiter); err != nil {
			return report, err
		}
		report.Examined++

		if err := s.AddOwner(ctx, kind, key, adminID); err != nil {
			report.Failed++
			s.warnMigration(report.Routine, ownPrefix+kind.String()+":"+key, err)
			continue
		}
		report.Changed++
	}

	return report, nil
}

// RecalculateClimbs settles every climber's climb count against the crew
// reverse index. Data repair after inline-crew migration or index damage.
func (s *Store) RecalculateClimbs(ctx context.Context, limiter *rate.Limiter) (*MigrationReport, error) {
	report := newReport("recalculate-climbs")

	names, err := s.scanKeys(climberPrefix)
	if err != nil {
		return report, err
	}
	for _, name := range names {
		if err := waitLimiter(ctx, limiter); err != nil {
			return report, err
		}
		report.Examined++

		err := s.db.Update(func(txn *badger.Txn) error {
			var rec climberRecord
			err := getJSONTxn(txn, climberPrefix+name, &rec)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil // Deleted since the scan.
			}
			if err != nil {
				return err
			}

			count, err := countPrefixTxn(txn, albumsCrewIdx+name+":")
			if err != nil {
				return err
			}
			if count == rec.Climbs {
				return nil
			}

			rec.Climbs = count
			report.Changed++
			return setJSONTxn(txn, climberPrefix+name, rec)
		})
		if err != nil {
			report.Failed++
			s.warnMigration(report.Routine, climberPrefix+name, err)
		}
	}

	return report, nil
}
