package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
	"github.com/cragbook/cragbook-server/internal/validation"
)

// Key prefixes for user storage.
const (
	userPrefix        = "user:"           // user:{id} → record JSON
	userByEmailPrefix = "idx:users:email:" // idx:users:email:{email} → userID
)

// userRecord is the persisted shape. Users are keyed by their
// external-identity ID, so the whole entity is scalar.
type userRecord struct {
	ID          string                      `json:"id"`
	Email       string                      `json:"email"`
	DisplayName string                      `json:"display_name,omitempty"`
	Role        domain.Role                 `json:"role"`
	Created     map[domain.ResourceKind]int `json:"created,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (r *userRecord) toDomain() *domain.User {
	u := &domain.User{
		ID:          r.ID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Role:        r.Role,
		Created:     r.Created,
	}
	u.CreatedAt = r.CreatedAt
	u.UpdatedAt = r.UpdatedAt
	return u
}

// UserPatch is a partial update of a user's fields.
// Nil fields are left untouched.
type UserPatch struct {
	Email       *string
	DisplayName *string
	Role        *domain.Role
}

// CreateUser creates a new user account. The email index enforces one
// account per address.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := userPrefix + u.ID
	emailKey := userByEmailPrefix + validation.NormalizeEmail(u.Email)

	err := s.db.Update(func(txn *badger.Txn) error {
		taken, err := existsTxn(txn, key)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.AlreadyExistsf("user %q already exists", u.ID)
		}

		emailTaken, err := existsTxn(txn, emailKey)
		if err != nil {
			return err
		}
		if emailTaken {
			return apperrors.AlreadyExists("email already in use")
		}

		now := time.Now()
		rec := userRecord{
			ID:          u.ID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			Role:        u.Role,
			Created:     u.Created,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if !u.CreatedAt.IsZero() {
			rec.CreatedAt = u.CreatedAt
		}
		if err := setJSONTxn(txn, key, rec); err != nil {
			return err
		}
		return txn.Set([]byte(emailKey), []byte(u.ID))
	})

	return storeErr(err)
}

// GetUser retrieves a user by ID. Returns NotFound if missing.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var u *domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		var rec userRecord
		err := getJSONTxn(txn, userPrefix+id, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("user %q not found", id)
		}
		if err != nil {
			return err
		}
		u = rec.toDomain()
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user through the email index.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var u *domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userByEmailPrefix + validation.NormalizeEmail(email)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("no user with email %q", email)
		}
		if err != nil {
			return err
		}

		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		var rec userRecord
		if err := getJSONTxn(txn, userPrefix+id, &rec); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.NotFoundf("user %q not found", id)
			}
			return err
		}
		u = rec.toDomain()
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return u, nil
}

// UpdateUser applies a partial update. An email change moves the email
// index entry in the same transaction.
func (s *Store) UpdateUser(ctx context.Context, id string, patch UserPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec userRecord
		err := getJSONTxn(txn, userPrefix+id, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("user %q not found", id)
		}
		if err != nil {
			return err
		}

		if patch.Email != nil && validation.NormalizeEmail(*patch.Email) != validation.NormalizeEmail(rec.Email) {
			newKey := userByEmailPrefix + validation.NormalizeEmail(*patch.Email)
			taken, err := existsTxn(txn, newKey)
			if err != nil {
				return err
			}
			if taken {
				return apperrors.AlreadyExists("email already in use")
			}
			if err := txn.Set([]byte(newKey), []byte(id)); err != nil {
				return err
			}
			if err := removeMemberTxn(txn, userByEmailPrefix+validation.NormalizeEmail(rec.Email)); err != nil {
				return err
			}
			rec.Email = *patch.Email
		}
		if patch.DisplayName != nil {
			rec.DisplayName = *patch.DisplayName
		}
		if patch.Role != nil {
			rec.Role = *patch.Role
		}
		rec.UpdatedAt = time.Now()

		return setJSONTxn(txn, userPrefix+id, rec)
	})

	return storeErr(err)
}

// RecordUserCreated increments the user's per-kind creation counter.
func (s *Store) RecordUserCreated(ctx context.Context, id string, kind domain.ResourceKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKind(kind); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec userRecord
		err := getJSONTxn(txn, userPrefix+id, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("user %q not found", id)
		}
		if err != nil {
			return err
		}

		if rec.Created == nil {
			rec.Created = make(map[domain.ResourceKind]int)
		}
		rec.Created[kind]++
		rec.UpdatedAt = time.Now()

		return setJSONTxn(txn, userPrefix+id, rec)
	})

	return storeErr(err)
}

// DeleteUser removes a user, the email index entry, and every ownership
// record held by them. Resources they owned become unowned (and
// discoverable via UnownedResources).
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var rec userRecord
		err := getJSONTxn(txn, userPrefix+id, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("user %q not found", id)
		}
		if err != nil {
			return err
		}

		for _, kind := range domain.AllResourceKinds {
			keys, err := scanSuffixesTxn(txn, ownedSetPrefix(id, kind))
			if err != nil {
				return err
			}
			for _, key := range keys {
				if err := removeOwnerTxn(txn, kind, key, id); err != nil {
					return err
				}
			}
		}

		if err := removeMemberTxn(txn, userByEmailPrefix+validation.NormalizeEmail(rec.Email)); err != nil {
			return err
		}
		return txn.Delete([]byte(userPrefix + id))
	})

	return storeErr(err)
}

// ListUsers returns all users sorted by ID.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var users []*domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := scanSuffixesTxn(txn, userPrefix)
		if err != nil {
			return err
		}
		for _, id := range ids {
			var rec userRecord
			if err := getJSONTxn(txn, userPrefix+id, &rec); err != nil {
				return err
			}
			users = append(users, rec.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return users, nil
}

// CountUsers returns the number of user records.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		count, err = countPrefixTxn(txn, userPrefix)
		return err
	})
	return count, storeErr(err)
}
