// Package service orchestrates domain operations over the store:
// input validation and normalization, ownership bookkeeping, and media
// side effects that cannot live inside store transactions.
package service

import (
	"context"
	"log/slog"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
	"github.com/cragbook/cragbook-server/internal/media/images"
	"github.com/cragbook/cragbook-server/internal/store"
	"github.com/cragbook/cragbook-server/internal/validation"
)

// ClimberService orchestrates climber operations.
type ClimberService struct {
	store     *store.Store
	faces     *images.Storage
	logger    *slog.Logger
	validator *validation.Validator
}

// NewClimberService creates a new climber service.
func NewClimberService(store *store.Store, faces *images.Storage, logger *slog.Logger) *ClimberService {
	return &ClimberService{
		store:     store,
		faces:     faces,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateClimberRequest contains fields for adding a climber.
type CreateClimberRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=200,store_key"`
	Locations    []string `json:"locations,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// CreateClimber adds a climber and records the creator as owner.
func (s *ClimberService) CreateClimber(ctx context.Context, userID string, req CreateClimberRequest) (*domain.Climber, error) {
	req.Name = validation.NormalizeName(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validation.CheckMembers("skills", req.Skills); err != nil {
		return nil, err
	}
	if err := validation.CheckMembers("tags", req.Tags); err != nil {
		return nil, err
	}
	if err := validation.CheckMembers("achievements", req.Achievements); err != nil {
		return nil, err
	}

	c := &domain.Climber{
		Name:         req.Name,
		Locations:    req.Locations,
		Skills:       validation.NormalizeValues(req.Skills),
		Tags:         validation.NormalizeValues(req.Tags),
		Achievements: validation.NormalizeValues(req.Achievements),
	}
	c.InitTimestamps()

	if err := s.store.CreateClimber(ctx, c); err != nil {
		return nil, err
	}

	if userID != "" {
		if err := s.store.AddOwner(ctx, domain.KindClimber, c.Name, userID); err != nil {
			s.logger.Warn("could not record climber owner", "name", c.Name, "user_id", userID, "error", err)
		}
		if err := s.store.RecordUserCreated(ctx, userID, domain.KindClimber); err != nil {
			s.logger.Warn("could not bump creation counter", "user_id", userID, "error", err)
		}
	}

	s.logger.Info("climber created", "name", c.Name, "user_id", userID)
	return s.store.GetClimber(ctx, c.Name)
}

// GetClimber returns a climber with resolved relationships and level.
func (s *ClimberService) GetClimber(ctx context.Context, name string) (*domain.Climber, error) {
	return s.store.GetClimber(ctx, validation.NormalizeName(name))
}

// UpdateClimberRequest contains updatable scalar fields.
type UpdateClimberRequest struct {
	Locations *[]string `json:"locations,omitempty"`
	FaceImage *string   `json:"face_image,omitempty"`
}

// UpdateClimber updates a climber's scalar fields.
func (s *ClimberService) UpdateClimber(ctx context.Context, name string, req UpdateClimberRequest) (*domain.Climber, error) {
	name = validation.NormalizeName(name)

	patch := store.ClimberPatch{
		Locations: req.Locations,
		FaceImage: req.FaceImage,
	}
	if err := s.store.UpdateClimber(ctx, name, patch); err != nil {
		return nil, err
	}
	return s.store.GetClimber(ctx, name)
}

// SetSkills replaces a climber's skill set.
func (s *ClimberService) SetSkills(ctx context.Context, name string, skills []string) (*domain.Climber, error) {
	name = validation.NormalizeName(name)
	if err := validation.CheckMembers("skills", skills); err != nil {
		return nil, err
	}
	if err := s.store.SetClimberSkills(ctx, name, validation.NormalizeValues(skills)); err != nil {
		return nil, err
	}
	return s.store.GetClimber(ctx, name)
}

// SetTags replaces a climber's tag set.
func (s *ClimberService) SetTags(ctx context.Context, name string, tags []string) (*domain.Climber, error) {
	name = validation.NormalizeName(name)
	if err := validation.CheckMembers("tags", tags); err != nil {
		return nil, err
	}
	if err := s.store.SetClimberTags(ctx, name, validation.NormalizeValues(tags)); err != nil {
		return nil, err
	}
	return s.store.GetClimber(ctx, name)
}

// SetAchievements replaces a climber's achievement set.
func (s *ClimberService) SetAchievements(ctx context.Context, name string, achievements []string) (*domain.Climber, error) {
	name = validation.NormalizeName(name)
	if err := validation.CheckMembers("achievements", achievements); err != nil {
		return nil, err
	}
	if err := s.store.SetClimberAchievements(ctx, name, validation.NormalizeValues(achievements)); err != nil {
		return nil, err
	}
	return s.store.GetClimber(ctx, name)
}

// RenameClimberRequest contains fields for renaming a climber.
type RenameClimberRequest struct {
	NewName string `json:"new_name" validate:"required,min=1,max=200,store_key"`
}

// RenameClimber changes a climber's key, carrying relationships, crew
// references, ownership, and the stored face image along.
func (s *ClimberService) RenameClimber(ctx context.Context, name string, req RenameClimberRequest) (*domain.Climber, error) {
	name = validation.NormalizeName(name)
	req.NewName = validation.NormalizeName(req.NewName)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.store.RenameClimber(ctx, name, req.NewName); err != nil {
		return nil, err
	}

	// The face file rename happens outside the record transaction; a
	// crash in between leaves the image under the old name, which the
	// next upload overwrites.
	if s.faces != nil {
		if err := s.faces.Rename(domain.FaceImageID(name), domain.FaceImageID(req.NewName)); err != nil {
			s.logger.Warn("could not rename face image", "from", name, "to", req.NewName, "error", err)
		}
	}

	s.logger.Info("climber renamed", "from", name, "to", req.NewName)
	return s.store.GetClimber(ctx, req.NewName)
}

// DeleteClimber removes a climber, their relationships, crew references,
// ownership records, and stored face image.
func (s *ClimberService) DeleteClimber(ctx context.Context, name string) error {
	name = validation.NormalizeName(name)

	if err := s.store.DeleteClimber(ctx, name); err != nil {
		return err
	}

	if s.faces != nil {
		if err := s.faces.Delete(domain.FaceImageID(name)); err != nil {
			s.logger.Warn("could not delete face image", "name", name, "error", err)
		}
	}

	s.logger.Info("climber deleted", "name", name)
	return nil
}

// SetFaceImage stores an uploaded face image and points the climber
// record at it. The stored filename doubles as the record reference.
func (s *ClimberService) SetFaceImage(ctx context.Context, name string, imgData []byte) (*domain.Climber, error) {
	name = validation.NormalizeName(name)
	if s.faces == nil {
		return nil, apperrors.Unavailable("face image storage is not configured")
	}

	// Verify the climber exists before writing the file.
	if _, err := s.store.GetClimber(ctx, name); err != nil {
		return nil, err
	}

	imageID := domain.FaceImageID(name)
	if err := s.faces.Save(imageID, imgData); err != nil {
		return nil, apperrors.Internal("save face image").WithCause(err)
	}

	ref := domain.FaceImageRef(name)
	if err := s.store.UpdateClimber(ctx, name, store.ClimberPatch{FaceImage: &ref}); err != nil {
		return nil, err
	}
	return s.store.GetClimber(ctx, name)
}

// FaceImageBlurHash computes a placeholder hash for a climber's stored
// face image.
func (s *ClimberService) FaceImageBlurHash(ctx context.Context, name string) (string, error) {
	name = validation.NormalizeName(name)
	if s.faces == nil {
		return "", apperrors.Unavailable("face image storage is not configured")
	}

	data, err := s.faces.Get(domain.FaceImageID(name))
	if err != nil {
		return "", apperrors.NotFound("face image").WithCause(err)
	}
	return images.ComputeBlurHash(data)
}

// FaceImage returns the stored face image bytes for a climber.
func (s *ClimberService) FaceImage(ctx context.Context, name string) ([]byte, error) {
	name = validation.NormalizeName(name)
	if s.faces == nil {
		return nil, apperrors.Unavailable("face image storage is not configured")
	}

	data, err := s.faces.Get(domain.FaceImageID(name))
	if err != nil {
		return nil, apperrors.NotFound("face image").WithCause(err)
	}
	return data, nil
}

// ListClimbers returns all climbers sorted by name.
func (s *ClimberService) ListClimbers(ctx context.Context) ([]*domain.Climber, error) {
	return s.store.ListClimbers(ctx)
}

// ListBySkill returns climbers holding a skill.
func (s *ClimberService) ListBySkill(ctx context.Context, skill string) ([]*domain.Climber, error) {
	return s.store.ListClimbersBySkill(ctx, validation.NormalizeValue(skill))
}

// ListByTag returns climbers carrying a tag.
func (s *ClimberService) ListByTag(ctx context.Context, tag string) ([]*domain.Climber, error) {
	return s.store.ListClimbersByTag(ctx, validation.NormalizeValue(tag))
}

// ListByAchievement returns climbers holding an achievement.
func (s *ClimberService) ListByAchievement(ctx context.Context, achievement string) ([]*domain.Climber, error) {
	return s.store.ListClimbersByAchievement(ctx, validation.NormalizeValue(achievement))
}

// AllSkills returns every skill value ever used, sorted.
func (s *ClimberService) AllSkills(ctx context.Context) ([]string, error) {
	return s.store.AllSkills(ctx)
}

// AllTags returns every tag value ever used, sorted.
func (s *ClimberService) AllTags(ctx context.Context) ([]string, error) {
	return s.store.AllTags(ctx)
}

// AllAchievements returns every achievement value ever used, sorted.
func (s *ClimberService) AllAchievements(ctx context.Context) ([]string, error) {
	return s.store.AllAchievements(ctx)
}
