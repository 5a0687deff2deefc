package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/cragbook/cragbook-server/internal/errors"
)

type createInput struct {
	Name  string `json:"name" validate:"required,min=1,max=200,store_key"`
	Email string `json:"email" validate:"omitempty,email"`
	URL   string `json:"url" validate:"omitempty,album_url"`
}

func TestValidate_OK(t *testing.T) {
	v := New()

	err := v.Validate(createInput{
		Name:  "Maja Kowalska",
		Email: "maja@example.com",
		URL:   "https://photos.app.goo.gl/AbC123_-xyz",
	})
	assert.NoError(t, err)
}

func TestValidate_RequiredAndKeySafety(t *testing.T) {
	v := New()

	err := v.Validate(createInput{Name: ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	err = v.Validate(createInput{Name: "no:colons"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestValidate_FieldNamesFromJSONTags(t *testing.T) {
	v := New()

	err := v.Validate(createInput{Name: "Maja", Email: "not-an-email"})
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.True(t, errors.As(err, &appErr))
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "email")
}

func TestValidAlbumURL(t *testing.T) {
	assert.True(t, ValidAlbumURL("https://photos.app.goo.gl/AbC123"))
	assert.False(t, ValidAlbumURL("https://photos.app.goo.gl/"))
	assert.False(t, ValidAlbumURL("https://example.com/album/1"))
	assert.False(t, ValidAlbumURL("photos.app.goo.gl/AbC123"))
	assert.False(t, ValidAlbumURL(""))
}
