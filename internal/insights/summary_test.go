package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/zed-insights/internal/aggregation"
	"github.com/yourusername/zed-insights/internal/models"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func sampleDataset() *aggregation.Dataset {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []models.RawRecord{
		{RaceID: "R1", HorseID: "H1", HorseName: "Blaze", Odds: floatPtr(2), FinishPosition: intPtr(1),
			Rating: floatPtr(650), RaceDate: date, CPUAugment: "Void C100"},
		{RaceID: "R1", HorseID: "H2", HorseName: "Comet", Odds: floatPtr(2), FinishPosition: intPtr(2),
			Rating: floatPtr(150), RaceDate: date, CPUAugment: "Crimson C", HydraulicAugment: "GX-Core H"},
		{RaceID: "R2", HorseID: "H1", HorseName: "Blaze", Odds: floatPtr(3), FinishPosition: intPtr(4),
			Rating: floatPtr(650), RaceDate: date.AddDate(0, 0, -7), HydraulicAugment: "Void C100"},
	}
	return aggregation.Build(records, date, date)
}

func TestBuildRaceSummaryOrdersByGate(t *testing.T) {
	entrants := []Entrant{
		{ID: "H9", Name: "Newcomer"},
		{ID: "H2", Gate: intPtr(7)},
		{ID: "H1", Gate: intPtr(2), IsUser: true},
		{ID: "H8", Gate: intPtr(0)},
	}

	summary := BuildRaceSummary(sampleDataset(), entrants, time.Now())
	require.Len(t, summary.Entrants, 4)

	ids := []string{}
	for _, e := range summary.Entrants {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"H1", "H2", "H9", "H8"}, ids)
	assert.Equal(t, "2", summary.Entrants[0].GateLabel)
	assert.Equal(t, "G?", summary.Entrants[2].GateLabel)
}

func TestBuildRaceSummaryEntrantWithHistory(t *testing.T) {
	entrants := []Entrant{{ID: "H1", Gate: intPtr(2), IsUser: true, Augments: []string{"N/A", " Void C100", ""}}}

	s := BuildRaceSummary(sampleDataset(), entrants, time.Now()).Entrants[0]

	require.True(t, s.HasHistory())
	assert.Equal(t, "Blaze", s.Name)
	assert.Equal(t, "★★★★", s.StarLabel)
	assert.Equal(t, "N/A | N/A | Void C100", s.CurrentSetKey)
	require.Len(t, s.CurrentAugments, 3)
	assert.Equal(t, AugmentInfo{Name: "Void C100", Description: "Passive speed boost."}, s.CurrentAugments[1])
	assert.Empty(t, s.CurrentAugments[0].Description)

	require.NotNil(t, s.SetStats)
	assert.Equal(t, 2, s.SetStats.Entries)
	require.NotNil(t, s.OwnSetRecord)
	assert.Equal(t, models.SetPerformance{Count: 2, Wins: 1, TotalFinish: 5}, *s.OwnSetRecord)
	assert.Equal(t, []string{models.StrategyPassiveSpeedster}, s.Strategies)
	assert.Len(t, s.HistoricalSets, 2)
}

func TestBuildRaceSummaryEntrantWithoutHistory(t *testing.T) {
	entrants := []Entrant{{ID: "H9", Name: "Newcomer", Augments: []string{"Darklight 100C", "GX-Core H"}}}

	s := BuildRaceSummary(sampleDataset(), entrants, time.Now()).Entrants[0]

	assert.False(t, s.HasHistory())
	assert.Equal(t, "-", s.StarLabel)
	assert.Equal(t, "Darklight 100C | GX-Core H | N/A", s.CurrentSetKey)
	assert.Nil(t, s.SetStats)
	assert.Nil(t, s.OwnSetRecord)
	assert.Empty(t, s.HistoricalSets)
	assert.Equal(t, []string{models.StrategyAggressiveStarter, models.StrategyBigFinisher}, s.Strategies)
}

func TestBuildRaceSummaryEmpty(t *testing.T) {
	summary := BuildRaceSummary(aggregation.EmptyDataset(), nil, time.Now())
	assert.Empty(t, summary.Entrants)
}
