package models

import "time"

// RaceSettings is the next-race announcement. The table holds at most one
// row of interest: services always work with the first row and create it
// lazily when missing.
type RaceSettings struct {
	ID               int64      `db:"id" json:"id"`
	NextRaceLocation *string    `db:"next_race_location" json:"nextRaceLocation"`
	NextRaceDate     *time.Time `db:"next_race_date" json:"nextRaceDate"`
	RaceDescription  *string    `db:"race_description" json:"raceDescription"`
	CircuitImage     *string    `db:"circuit_image" json:"circuitImage"`
}

// HasRace reports whether a race is currently announced.
func (s *RaceSettings) HasRace() bool {
	return s.NextRaceDate != nil
}

// ClearRace nulls out all announcement fields together.
func (s *RaceSettings) ClearRace() {
	s.NextRaceLocation = nil
	s.NextRaceDate = nil
	s.RaceDescription = nil
	s.CircuitImage = nil
}
