package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `race_id,horse_id,horse_name,bloodline,finish_position,finish_time,odds,rating,race_date,cpu_augment,hydraulic_augment,ram_augment
R1,H1,Blaze,Nakamoto,1,61.25,2.0,512,2024-03-01 10:00:00,Void C100,N/A,
R1,H2,Comet,Szabo,2,62.10,2,380,2024-03-01 10:00:00,,Crimson R,Midnight 100R
R1,H3,Dash,Finney,3.0,abc,4,-10,2024-03-01,N/A,N/A,N/A
`

func TestParseTable(t *testing.T) {
	records, err := ParseTable([]byte(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "R1", first.RaceID)
	assert.Equal(t, "H1", first.HorseID)
	assert.Equal(t, "Blaze", first.HorseName)
	assert.Equal(t, "Nakamoto", first.BloodlineName)
	require.NotNil(t, first.FinishPosition)
	assert.Equal(t, 1, *first.FinishPosition)
	require.NotNil(t, first.FinishTime)
	assert.InDelta(t, 61.25, *first.FinishTime, 1e-9)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), first.RaceDate)
	assert.Equal(t, "Void C100", first.CPUAugment)
	assert.Empty(t, first.RAMAugment)

	third := records[2]
	require.NotNil(t, third.FinishPosition)
	assert.Equal(t, 3, *third.FinishPosition)
	assert.Nil(t, third.FinishTime, "malformed numerics become nil")
	assert.Nil(t, third.Rating, "negative ratings are rejected")
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), third.RaceDate)
}

func TestParseTableAliasesAndBOM(t *testing.T) {
	payload := "\xef\xbb\xbfRace_ID,Horse_ID,Bloodline_Name,Date\nR9,H9,Buterin,2024-01-02\n\n"

	records, err := ParseTable([]byte(payload))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Buterin", records[0].BloodlineName)
	assert.Equal(t, 2024, records[0].RaceDate.Year())
	assert.Nil(t, records[0].Odds)
}

func TestParseTableKeepsIncompleteRows(t *testing.T) {
	records, err := ParseTable([]byte("race_id,horse_id\n,H1\nR1,\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[0].IsComplete())
	assert.False(t, records[1].IsComplete())
}

func TestParseTableRejectsPositions(t *testing.T) {
	records, err := ParseTable([]byte("race_id,horse_id,finish_position\nR,A,0\nR,B,2.5\nR,C,-1\nR,D,DNF\n"))
	require.NoError(t, err)
	for _, r := range records {
		assert.Nil(t, r.FinishPosition, r.HorseID)
	}
}

func TestParseTableKeepsRaggedRows(t *testing.T) {
	payload := "race_id,horse_id,odds,finish_position\nR1,H1,2,1\nR1,H2,2\nR1,H3,4,3,extra\n"

	records, err := ParseTable([]byte(payload))
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.NotNil(t, records[1].Odds)
	assert.Equal(t, 2.0, *records[1].Odds)
	assert.Nil(t, records[1].FinishPosition)

	require.NotNil(t, records[2].FinishPosition)
	assert.Equal(t, 3, *records[2].FinishPosition)
}

func TestParseTableRejectsOutOfRangeNumbers(t *testing.T) {
	payload := "race_id,horse_id,odds,rating,finish_time,finish_position\n" +
		"R1,H1,1e400,1e999,1e400,99999999999999999999\n" +
		"R1,H2,2,300,61.5,2147483647\n" +
		"R1,H3,3,300,61.5,2147483648\n"

	records, err := ParseTable([]byte(payload))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Nil(t, first.Odds)
	assert.Nil(t, first.Rating)
	assert.Nil(t, first.FinishTime)
	assert.Nil(t, first.FinishPosition)

	require.NotNil(t, records[1].FinishPosition)
	assert.Equal(t, 2147483647, *records[1].FinishPosition)
	assert.Nil(t, records[2].FinishPosition)
}

func TestParseTableMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"whitespace", "  \n "},
		{"missing race_id", "horse_id,odds\nH1,2\n"},
		{"unterminated quote", "race_id,horse_id\n\"R1,H1\n"},
		{"not csv", "{\"races\": []}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.payload))
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}
