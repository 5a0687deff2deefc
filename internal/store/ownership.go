package store

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

// Ownership key prefixes. Forward and reverse records are mirrored set
// records maintained in lock-step:
//
//	own:{kind}:{resourceKey}:{userID}   → ""
//	owned:{userID}:{kind}:{resourceKey} → ""
const (
	ownPrefix   = "own:"
	ownedPrefix = "owned:"
)

func ownerSetPrefix(kind domain.ResourceKind, key string) string {
	return ownPrefix + kind.String() + ":" + key + ":"
}

func ownedSetPrefix(userID string, kind domain.ResourceKind) string {
	return ownedPrefix + userID + ":" + kind.String() + ":"
}

// primaryPrefix maps a resource kind to the prefix of its primary records.
func primaryPrefix(kind domain.ResourceKind) string {
	switch kind {
	case domain.KindAlbum:
		return albumPrefix
	case domain.KindClimber:
		return climberPrefix
	case domain.KindLocation:
		return locationPrefix
	case domain.KindMeme:
		return memePrefix
	}
	return ""
}

func checkKind(kind domain.ResourceKind) error {
	if !kind.Valid() {
		return apperrors.Validationf("unknown resource kind %q", kind)
	}
	return nil
}

// addOwnerTxn writes both directions of one ownership membership.
func addOwnerTxn(txn *badger.Txn, kind domain.ResourceKind, key, userID string) error {
	if err := addMemberTxn(txn, ownerSetPrefix(kind, key)+userID); err != nil {
		return err
	}
	return addMemberTxn(txn, ownedSetPrefix(userID, kind)+key)
}

// removeOwnerTxn removes both directions of one ownership membership.
func removeOwnerTxn(txn *badger.Txn, kind domain.ResourceKind, key, userID string) error {
	if err := removeMemberTxn(txn, ownerSetPrefix(kind, key)+userID); err != nil {
		return err
	}
	return removeMemberTxn(txn, ownedSetPrefix(userID, kind)+key)
}

// clearOwnershipTxn removes every ownership record of a resource,
// both directions. Used by entity deletion.
func clearOwnershipTxn(txn *badger.Txn, kind domain.ResourceKind, key string) error {
	owners, err := scanSuffixesTxn(txn, ownerSetPrefix(kind, key))
	if err != nil {
		return err
	}
	for _, userID := range owners {
		if err := removeOwnerTxn(txn, kind, key, userID); err != nil {
			return err
		}
	}
	return nil
}

// moveOwnershipTxn repoints every ownership record of a resource from
// oldKey to newKey. Used by entity rename.
func moveOwnershipTxn(txn *badger.Txn, kind domain.ResourceKind, oldKey, newKey string) error {
	owners, err := scanSuffixesTxn(txn, ownerSetPrefix(kind, oldKey))
	if err != nil {
		return err
	}
	for _, userID := range owners {
		if err := addOwnerTxn(txn, kind, newKey, userID); err != nil {
			return err
		}
		if err := removeOwnerTxn(txn, kind, oldKey, userID); err != nil {
			return err
		}
	}
	return nil
}

// AddOwner adds a user to a resource's owner set. Idempotent.
// The resource must exist.
func (s *Store) AddOwner(ctx context.Context, kind domain.ResourceKind, key, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKind(kind); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		found, err := existsTxn(txn, primaryPrefix(kind)+key)
		if err != nil {
			return err
		}
		if !found {
			return apperrors.NotFoundf("%s %q not found", kind, key)
		}
		return addOwnerTxn(txn, kind, key, userID)
	})

	return storeErr(err)
}

// RemoveOwner removes a user from a resource's owner set. For kinds that
// must always keep an owner, removing the last one returns Conflict.
func (s *Store) RemoveOwner(ctx context.Context, kind domain.ResourceKind, key, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKind(kind); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		owners, err := scanSuffixesTxn(txn, ownerSetPrefix(kind, key))
		if err != nil {
			return err
		}

		holds := false
		for _, o := range owners {
			if o == userID {
				holds = true
				break
			}
		}
		if !holds {
			return apperrors.NotFoundf("user %q does not own %s %q", userID, kind, key)
		}
		if kind.MustHaveOwner() && len(owners) == 1 {
			return apperrors.Conflictf("%s %q must keep at least one owner", kind, key)
		}

		return removeOwnerTxn(txn, kind, key, userID)
	})

	return storeErr(err)
}

// Owners returns the owner set of a resource, sorted.
func (s *Store) Owners(ctx context.Context, kind domain.ResourceKind, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	var owners []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		owners, err = scanSuffixesTxn(txn, ownerSetPrefix(kind, key))
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return owners, nil
}

// IsOwner reports whether the user owns the resource.
func (s *Store) IsOwner(ctx context.Context, kind domain.ResourceKind, key, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := checkKind(kind); err != nil {
		return false, err
	}

	var owns bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		owns, err = existsTxn(txn, ownerSetPrefix(kind, key)+userID)
		return err
	})
	return owns, storeErr(err)
}

// ResourcesOwnedBy returns the keys of all resources of the given kind
// owned by the user, sorted.
func (s *Store) ResourcesOwnedBy(ctx context.Context, userID string, kind domain.ResourceKind) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		keys, err = scanSuffixesTxn(txn, ownedSetPrefix(userID, kind))
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return keys, nil
}

// TransferOwnership atomically replaces one owner with another.
// The from user must currently own the resource.
func (s *Store) TransferOwnership(ctx context.Context, kind domain.ResourceKind, key, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKind(kind); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		owns, err := existsTxn(txn, ownerSetPrefix(kind, key)+from)
		if err != nil {
			return err
		}
		if !owns {
			return apperrors.Conflictf("user %q does not own %s %q", from, kind, key)
		}
		if err := addOwnerTxn(txn, kind, key, to); err != nil {
			return err
		}
		return removeOwnerTxn(txn, kind, key, from)
	})

	return storeErr(err)
}

// UnownedResources scans the kind's full primary index and returns the
// keys whose owner set is empty. Administrative reconciliation only, not
// a hot path.
func (s *Store) UnownedResources(ctx context.Context, kind domain.ResourceKind) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	var unowned []string
	err := s.db.View(func(txn *badger.Txn) error {
		keys, err := scanSuffixesTxn(txn, primaryPrefix(kind))
		if err != nil {
			return err
		}
		for _, key := range keys {
			n, err := countPrefixTxn(txn, ownerSetPrefix(kind, key))
			if err != nil {
				return err
			}
			if n == 0 {
				unowned = append(unowned, key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return unowned, nil
}
