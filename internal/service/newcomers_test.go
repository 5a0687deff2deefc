package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cragbook/cragbook-server/internal/domain"
)

func TestEarliestAppearances(t *testing.T) {
	albums := []*domain.Album{
		{Date: "2024-06-10", Crew: []string{"Maja", "Tomek"}},
		{Date: "2024-05-01", Crew: []string{"Tomek"}},
		{Date: "2024-06-20", Crew: []string{"Maja", "Ania"}},
		{Date: "no date here", Crew: []string{"Ghost"}},
	}

	earliest := EarliestAppearances(albums)

	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), earliest["Maja"])
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), earliest["Tomek"])
	assert.Equal(t, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), earliest["Ania"])

	// Climbers only on undated albums have no earliest appearance.
	_, ok := earliest["Ghost"]
	assert.False(t, ok)
}

func TestEarliestAppearances_Empty(t *testing.T) {
	assert.Empty(t, EarliestAppearances(nil))
}
