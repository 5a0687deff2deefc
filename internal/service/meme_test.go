package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

func TestUploadMeme(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	users := NewUserService(env.store, env.log)
	_, err := users.RegisterUser(ctx, RegisterUserRequest{ID: "user_1", Email: "a@example.com"})
	require.NoError(t, err)

	svc := NewMemeService(env.store, env.memes, env.log)

	m, err := svc.UploadMeme(ctx, "user_1", []byte("fake jpeg bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(m.ID, "meme-"))
	assert.Equal(t, "user_1", m.Creator)
	assert.Equal(t, m.ID+".jpg", m.Image)

	// Record, image, and ownership are all in place.
	got, err := svc.GetMeme(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "user_1", got.Creator)

	data, err := svc.MemeImage(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake jpeg bytes"), data)

	owners, err := env.store.Owners(ctx, domain.KindMeme, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1"}, owners)

	u, err := users.GetUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.CountCreated(domain.KindMeme))
}

func TestUploadMeme_Validation(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	svc := NewMemeService(env.store, env.memes, env.log)
	ctx := context.Background()

	_, err := svc.UploadMeme(ctx, "", []byte("img"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.UploadMeme(ctx, "user_1", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDeleteMeme_RemovesImage(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	users := NewUserService(env.store, env.log)
	_, err := users.RegisterUser(ctx, RegisterUserRequest{ID: "user_1", Email: "a@example.com"})
	require.NoError(t, err)

	svc := NewMemeService(env.store, env.memes, env.log)
	m, err := svc.UploadMeme(ctx, "user_1", []byte("img"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMeme(ctx, m.ID))

	_, err = svc.GetMeme(ctx, m.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, env.memes.Exists(m.ID))
}
