package domain

import "time"

// NewcomerWindow is the trailing window inside which a climber's earliest
// album appearance marks them as new.
const NewcomerWindow = 14 * 24 * time.Hour

// LevelBreakdown carries a climber's level together with its components
// so clients can show how it was earned. Levels are always recomputed
// from current relationship cardinalities, never read from storage.
type LevelBreakdown struct {
	Level        int `json:"level"`
	Base         int `json:"base"`
	Skills       int `json:"skills"`
	ClimbPoints  int `json:"climb_points"`
	Achievements int `json:"achievements"`
	Locations    int `json:"locations"`
}

// ComputeLevel computes a climber's level from current counts:
// one base point, one per skill, one per started block of five climbs,
// one per achievement, one per distinct visited location.
func ComputeLevel(skills, climbs, achievements, locations int) LevelBreakdown {
	if climbs < 0 {
		climbs = 0
	}
	climbPoints := (climbs + 4) / 5
	return LevelBreakdown{
		Level:        1 + skills + climbPoints + achievements + locations,
		Base:         1,
		Skills:       skills,
		ClimbPoints:  climbPoints,
		Achievements: achievements,
		Locations:    locations,
	}
}

// IsNewcomer reports whether a climber whose earliest album appearance is
// earliest is still inside the newcomer window at now.
func IsNewcomer(earliest, now time.Time) bool {
	if earliest.IsZero() {
		return false
	}
	return now.Sub(earliest) <= NewcomerWindow && !earliest.After(now)
}
