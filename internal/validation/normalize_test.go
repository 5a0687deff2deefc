package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Maja Kowalska", NormalizeName("  Maja   Kowalska "))
	assert.Equal(t, "Maja", NormalizeName("Maja"))
	assert.Equal(t, "", NormalizeName("   "))

	// Decomposed and precomposed forms collapse to the same key.
	assert.Equal(t, NormalizeName("José"), NormalizeName("José"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "maja@example.com", NormalizeEmail("  MAJA@Example.COM "))
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "kid-friendly", NormalizeValue("  Kid-Friendly "))
	assert.Equal(t, "deep water solo", NormalizeValue("Deep  Water   Solo"))
}

func TestNormalizeValues(t *testing.T) {
	got := NormalizeValues([]string{"Trad", "  trad ", "", "Bouldering", "TRAD"})
	assert.Equal(t, []string{"trad", "bouldering"}, got)

	assert.Empty(t, NormalizeValues(nil))
	assert.Empty(t, NormalizeValues([]string{"", "  "}))
}

func TestIsStoreKeySafe(t *testing.T) {
	assert.True(t, IsStoreKeySafe("Maja Kowalska"))
	assert.True(t, IsStoreKeySafe("Góry Sokole"))
	assert.False(t, IsStoreKeySafe(""))
	assert.False(t, IsStoreKeySafe("a:b"))
	assert.False(t, IsStoreKeySafe("line\nbreak"))
	assert.False(t, IsStoreKeySafe("del\x7f"))
}
