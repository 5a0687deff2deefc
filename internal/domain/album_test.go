package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAlbumDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-05-11", time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), true},
		{"2024.05.11", time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), true},
		{"11.05.2024", time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), true},
		{"2024/05/11", time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), true},
		{"11 May 2024", time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), true},
		{"May 11, 2024", time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), true},
		{"May 2024", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-05", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"  2024-05-11  ", time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"sometime last summer", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseAlbumDate(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		if tt.ok {
			assert.True(t, got.Equal(tt.want), "raw=%q got=%v", tt.raw, got)
		}
	}
}

func TestUserRoles(t *testing.T) {
	admin := &User{ID: "a", Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsPending())

	pending := &User{ID: "p", Role: RolePending}
	assert.False(t, pending.IsAdmin())
	assert.True(t, pending.IsPending())
}

func TestUserRecordCreated(t *testing.T) {
	u := &User{ID: "u"}
	assert.Equal(t, 0, u.CountCreated(KindAlbum))

	u.RecordCreated(KindAlbum)
	u.RecordCreated(KindAlbum)
	u.RecordCreated(KindMeme)

	assert.Equal(t, 2, u.CountCreated(KindAlbum))
	assert.Equal(t, 1, u.CountCreated(KindMeme))
}

func TestResourceKind(t *testing.T) {
	for _, k := range AllResourceKinds {
		assert.True(t, k.Valid())
	}
	assert.False(t, ResourceKind("banana").Valid())

	assert.True(t, KindAlbum.MustHaveOwner())
	assert.True(t, KindMeme.MustHaveOwner())
	assert.False(t, KindClimber.MustHaveOwner())
	assert.False(t, KindLocation.MustHaveOwner())
}
