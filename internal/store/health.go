package store

import "context"

// HealthStatus reports store connectivity and approximate record counts.
// Counts come from prefix scans with no snapshot across kinds; treat them
// as operator-facing gauges, not exact totals.
type HealthStatus struct {
	OK        bool `json:"ok"`
	Climbers  int  `json:"climbers"`
	Albums    int  `json:"albums"`
	Locations int  `json:"locations"`
	Memes     int  `json:"memes"`
	Users     int  `json:"users"`
}

// Health probes the store. A failed count marks the store unhealthy and
// returns the underlying error alongside the partial status.
func (s *Store) Health(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{}

	counts := []struct {
		dest  *int
		count func(context.Context) (int, error)
	}{
		{&status.Climbers, s.CountClimbers},
		{&status.Albums, s.CountAlbums},
		{&status.Locations, s.CountLocations},
		{&status.Memes, s.CountMemes},
		{&status.Users, s.CountUsers},
	}
	for _, c := range counts {
		n, err := c.count(ctx)
		if err != nil {
			return status, err
		}
		*c.dest = n
	}

	status.OK = true
	return status, nil
}
