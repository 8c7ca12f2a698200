package aggregation

import (
	"time"

	"github.com/yourusername/zed-insights/internal/models"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC)
}

// record builds a complete row; finish 0 means absent
func record(raceID, horseID string, odds float64, finish int, date time.Time) models.RawRecord {
	r := models.RawRecord{
		RaceID:    raceID,
		HorseID:   horseID,
		HorseName: "Horse " + horseID,
		Odds:      floatPtr(odds),
		RaceDate:  date,
	}
	if finish > 0 {
		r.FinishPosition = intPtr(finish)
	}
	return r
}
