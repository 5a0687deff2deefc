package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

func TestCreateLocation_NormalizesAttributes(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	svc := NewLocationService(env.store, env.log)

	l, err := svc.CreateLocation(ctx, "user_1", CreateLocationRequest{
		Name:       "  Sokoliki  ",
		Attributes: []string{"Granite", "SLABS", "granite", "  "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sokoliki", l.Name)
	assert.Equal(t, []string{"granite", "slabs"}, l.Attributes)
}

func TestSetAttributes_RejectsUnsafeValues(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	svc := NewLocationService(env.store, env.log)

	_, err := svc.CreateLocation(ctx, "", CreateLocationRequest{Name: "Sokoliki"})
	require.NoError(t, err)

	_, err = svc.SetAttributes(ctx, "Sokoliki", []string{"granite", "rock:type"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.CreateLocation(ctx, "", CreateLocationRequest{
		Name: "Rudawy", Attributes: []string{"limestone:"},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	l, err := svc.GetLocation(ctx, "Sokoliki")
	require.NoError(t, err)
	assert.Empty(t, l.Attributes)
}
