package models

import (
	"time"
)

// RawRecord represents one historical race participation row
type RawRecord struct {
	RaceID           string    `json:"race_id"`
	HorseID          string    `json:"horse_id"`
	HorseName        string    `json:"horse_name"`
	BloodlineName    string    `json:"bloodline"`
	FinishPosition   *int      `json:"finish_position"`
	FinishTime       *float64  `json:"finish_time"`
	Odds             *float64  `json:"odds"`
	Rating           *float64  `json:"rating"`
	RaceDate         time.Time `json:"race_date"`
	CPUAugment       string    `json:"cpu_augment"`
	HydraulicAugment string    `json:"hydraulic_augment"`
	RAMAugment       string    `json:"ram_augment"`
}

// IsComplete reports whether the record carries both identifiers
func (r *RawRecord) IsComplete() bool {
	return r.RaceID != "" && r.HorseID != ""
}

// GetOdds returns the odds or 0 if absent
func (r *RawRecord) GetOdds() float64 {
	if r.Odds == nil {
		return 0
	}
	return *r.Odds
}

// GetRating returns the rating or 0 if absent
func (r *RawRecord) GetRating() float64 {
	if r.Rating == nil {
		return 0
	}
	return *r.Rating
}

// Augments returns the three equipment slots in slot order
func (r *RawRecord) Augments() [3]string {
	return [3]string{r.CPUAugment, r.HydraulicAugment, r.RAMAugment}
}

// RaceEntry is a record annotated with its odds-implied expected rank
type RaceEntry struct {
	RawRecord
	ExpectedRank float64 `json:"expected_rank"`
}

// RaceGroup holds every entry of one race
type RaceGroup struct {
	RaceID    string      `json:"race_id"`
	Entries   []RaceEntry `json:"entries"`
	TotalOdds float64     `json:"total_odds"`
}

// EntryCount returns the number of entries in the race
func (g *RaceGroup) EntryCount() int {
	return len(g.Entries)
}
