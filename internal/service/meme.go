package service

import (
	"context"
	"log/slog"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
	"github.com/cragbook/cragbook-server/internal/id"
	"github.com/cragbook/cragbook-server/internal/media/images"
	"github.com/cragbook/cragbook-server/internal/store"
)

// MemeService orchestrates meme uploads. Memes always have an owner;
// the uploader is recorded at creation time.
type MemeService struct {
	store  *store.Store
	memes  *images.Storage
	logger *slog.Logger
}

// NewMemeService creates a new meme service.
func NewMemeService(store *store.Store, memes *images.Storage, logger *slog.Logger) *MemeService {
	return &MemeService{
		store:  store,
		memes:  memes,
		logger: logger,
	}
}

// UploadMeme stores the image and creates the meme record with a
// generated ID, owned by the uploader.
func (s *MemeService) UploadMeme(ctx context.Context, userID string, imgData []byte) (*domain.Meme, error) {
	if userID == "" {
		return nil, apperrors.Validation("meme uploads require an authenticated user")
	}
	if len(imgData) == 0 {
		return nil, apperrors.Validation("image data cannot be empty")
	}

	memeID, err := id.Generate("meme")
	if err != nil {
		return nil, apperrors.Internal("generate meme id").WithCause(err)
	}

	if s.memes != nil {
		if err := s.memes.Save(memeID, imgData); err != nil {
			return nil, apperrors.Internal("save meme image").WithCause(err)
		}
	}

	m := &domain.Meme{
		ID:      memeID,
		Creator: userID,
		Image:   memeID + ".jpg",
	}
	m.InitTimestamps()

	if err := s.store.CreateMeme(ctx, m); err != nil {
		// Roll back the file so a failed record write does not leave an
		// orphan on disk.
		if s.memes != nil {
			if derr := s.memes.Delete(memeID); derr != nil {
				s.logger.Warn("could not remove orphaned meme image", "id", memeID, "error", derr)
			}
		}
		return nil, err
	}

	if err := s.store.AddOwner(ctx, domain.KindMeme, memeID, userID); err != nil {
		s.logger.Warn("could not record meme owner", "id", memeID, "user_id", userID, "error", err)
	}
	if err := s.store.RecordUserCreated(ctx, userID, domain.KindMeme); err != nil {
		s.logger.Warn("could not bump creation counter", "user_id", userID, "error", err)
	}

	s.logger.Info("meme uploaded", "id", memeID, "user_id", userID)
	return m, nil
}

// GetMeme returns a meme record.
func (s *MemeService) GetMeme(ctx context.Context, memeID string) (*domain.Meme, error) {
	return s.store.GetMeme(ctx, memeID)
}

// MemeImage returns the stored image bytes for a meme.
func (s *MemeService) MemeImage(ctx context.Context, memeID string) ([]byte, error) {
	if s.memes == nil {
		return nil, apperrors.Unavailable("meme image storage is not configured")
	}
	if _, err := s.store.GetMeme(ctx, memeID); err != nil {
		return nil, err
	}

	data, err := s.memes.Get(memeID)
	if err != nil {
		return nil, apperrors.NotFound("meme image").WithCause(err)
	}
	return data, nil
}

// MemeBlurHash computes a placeholder hash for a meme's stored image.
func (s *MemeService) MemeBlurHash(ctx context.Context, memeID string) (string, error) {
	data, err := s.MemeImage(ctx, memeID)
	if err != nil {
		return "", err
	}
	return images.ComputeBlurHash(data)
}

// DeleteMeme removes a meme record, its ownership entries, and its
// stored image.
func (s *MemeService) DeleteMeme(ctx context.Context, memeID string) error {
	if err := s.store.DeleteMeme(ctx, memeID); err != nil {
		return err
	}

	if s.memes != nil {
		if err := s.memes.Delete(memeID); err != nil {
			s.logger.Warn("could not delete meme image", "id", memeID, "error", err)
		}
	}

	s.logger.Info("meme deleted", "id", memeID)
	return nil
}

// ListMemes returns all memes sorted by ID.
func (s *MemeService) ListMemes(ctx context.Context) ([]*domain.Meme, error) {
	return s.store.ListMemes(ctx)
}
