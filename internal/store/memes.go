package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

// Key prefix for meme storage. Memes have no set-valued fields; the record
// is the whole entity.
const memePrefix = "meme:" // meme:{id} → record JSON

// memeRecord is the persisted shape.
type memeRecord struct {
	ID        string    `json:"id"`
	Creator   string    `json:"creator"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateMeme stores a new meme under its generated ID.
func (s *Store) CreateMeme(ctx context.Context, m *domain.Meme) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := memePrefix + m.ID

	err := s.db.Update(func(txn *badger.Txn) error {
		taken, err := existsTxn(txn, key)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.AlreadyExistsf("meme %q already exists", m.ID)
		}

		now := time.Now()
		rec := memeRecord{
			ID:        m.ID,
			Creator:   m.Creator,
			Image:     m.Image,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if !m.CreatedAt.IsZero() {
			rec.CreatedAt = m.CreatedAt
		}
		return setJSONTxn(txn, key, rec)
	})

	return storeErr(err)
}

// GetMeme retrieves a meme by ID. Returns NotFound if missing.
func (s *Store) GetMeme(ctx context.Context, id string) (*domain.Meme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var m *domain.Meme
	err := s.db.View(func(txn *badger.Txn) error {
		var rec memeRecord
		err := getJSONTxn(txn, memePrefix+id, &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.NotFoundf("meme %q not found", id)
		}
		if err != nil {
			return err
		}
		m = &domain.Meme{
			ID:      rec.ID,
			Creator: rec.Creator,
			Image:   rec.Image,
		}
		m.CreatedAt = rec.CreatedAt
		m.UpdatedAt = rec.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return m, nil
}

// DeleteMeme removes a meme and its ownership records.
func (s *Store) DeleteMeme(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		found, err := existsTxn(txn, memePrefix+id)
		if err != nil {
			return err
		}
		if !found {
			return apperrors.NotFoundf("meme %q not found", id)
		}
		if err := clearOwnershipTxn(txn, domain.KindMeme, id); err != nil {
			return err
		}
		return txn.Delete([]byte(memePrefix + id))
	})

	return storeErr(err)
}

// ListMemes returns all memes sorted by ID.
func (s *Store) ListMemes(ctx context.Context) ([]*domain.Meme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var memes []*domain.Meme
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(memePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(memePrefix)); it.ValidForPrefix([]byte(memePrefix)); it.Next() {
			var rec memeRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			m := &domain.Meme{
				ID:      rec.ID,
				Creator: rec.Creator,
				Image:   rec.Image,
			}
			m.CreatedAt = rec.CreatedAt
			m.UpdatedAt = rec.UpdatedAt
			memes = append(memes, m)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return memes, nil
}

// CountMemes returns the number of meme records.
func (s *Store) CountMemes(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		count, err = countPrefixTxn(txn, memePrefix)
		return err
	})
	return count, storeErr(err)
}
