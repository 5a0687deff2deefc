package domain

import (
	"strings"
	"time"
)

// Album represents a shared photo album, keyed by its external service URL.
// Crew is a set sub-record resolved on read.
type Album struct {
	Tracked
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Date is free-text album metadata ("2024-07-13", "13.07.2024",
	// "July 2024"...). Parsing is lossy, see ParseAlbumDate.
	Date string `json:"date,omitempty"`

	CoverImage string `json:"cover_image,omitempty"`

	// Location is the canonical location name, empty if unset.
	Location string `json:"location,omitempty"`

	// Crew is the set of climber names on this album, resolved from the
	// crew set record on read.
	Crew []string `json:"crew"`
}

// albumDateLayouts are the accepted free-text date forms, most specific first.
//
//nolint:gochecknoglobals // Static parse table.
var albumDateLayouts = []string{
	"2006-01-02",
	"2006.01.02",
	"02.01.2006",
	"2006/01/02",
	"2 January 2006",
	"January 2, 2006",
	"January 2006",
	"2006-01",
}

// ParseAlbumDate attempts to parse the album's free-text date field.
// Returns the zero time and false when no layout matches.
func ParseAlbumDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range albumDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
