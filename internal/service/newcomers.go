package service

import (
	"context"
	"sort"
	"time"

	"github.com/cragbook/cragbook-server/internal/domain"
)

// EarliestAppearances computes, for each climber, the date of the
// earliest album whose crew contains them. Albums with unparseable
// dates are skipped; a climber who only appears on undated albums has
// no earliest appearance.
func EarliestAppearances(albums []*domain.Album) map[string]time.Time {
	type dated struct {
		when time.Time
		crew []string
	}

	parsed := make([]dated, 0, len(albums))
	for _, a := range albums {
		when, ok := domain.ParseAlbumDate(a.Date)
		if !ok {
			continue
		}
		parsed = append(parsed, dated{when: when, crew: a.Crew})
	}

	// Chronological walk so the first sighting of each name wins.
	sort.Slice(parsed, func(i, j int) bool {
		return parsed[i].when.Before(parsed[j].when)
	})

	earliest := make(map[string]time.Time)
	for _, d := range parsed {
		for _, name := range d.crew {
			if _, seen := earliest[name]; !seen {
				earliest[name] = d.when
			}
		}
	}
	return earliest
}

// Newcomers returns the climbers whose earliest album appearance falls
// inside the trailing newcomer window, with IsNew set. The scan reads
// every album; it is meant for periodic refreshes, not per-request use.
func (s *ClimberService) Newcomers(ctx context.Context, now time.Time) ([]*domain.Climber, error) {
	albums, err := s.store.ListAlbums(ctx)
	if err != nil {
		return nil, err
	}
	earliest := EarliestAppearances(albums)

	var newcomers []*domain.Climber
	for name, when := range earliest {
		if !domain.IsNewcomer(when, now) {
			continue
		}
		c, err := s.store.GetClimber(ctx, name)
		if err != nil {
			// Crew names without climber records are dangling
			// references, not newcomers.
			continue
		}
		c.IsNew = true
		newcomers = append(newcomers, c)
	}

	sort.Slice(newcomers, func(i, j int) bool {
		return newcomers[i].Name < newcomers[j].Name
	})
	return newcomers, nil
}
