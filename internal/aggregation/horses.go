package aggregation

import (
	"sort"

	"github.com/yourusername/zed-insights/internal/models"
	"github.com/yourusername/zed-insights/internal/normalize"
)

const (
	recentFinishes = 5
	recentSets     = 3
	recentOdds     = 3
)

// horseTally holds the running sums for one horse during the walk
type horseTally struct {
	races          int
	wins           int
	top3           int
	totalFinish    int
	totalRating    float64
	totalExpected  float64
	totalRankDiff  float64
	finishes       []int
	sets           []string
	odds           []float64
	oddsSeen       int
	finishTimes    []float64
	setPerformance map[string]models.SetPerformance
}

// BuildHorseProfiles derives one profile per horse from annotated entries.
// Each horse's history is walked most recent first; entries with equal dates
// keep their input order. When sets is non-nil every entry is also observed
// into the global equipment-set tally.
func BuildHorseProfiles(entries []models.RaceEntry, sets *SetAccumulator) map[string]*models.HorseProfile {
	byHorse := make(map[string][]models.RaceEntry)
	var order []string
	for _, e := range entries {
		if _, ok := byHorse[e.HorseID]; !ok {
			order = append(order, e.HorseID)
		}
		byHorse[e.HorseID] = append(byHorse[e.HorseID], e)
	}

	profiles := make(map[string]*models.HorseProfile, len(byHorse))
	for _, horseID := range order {
		history := byHorse[horseID]
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].RaceDate.After(history[j].RaceDate)
		})
		profiles[horseID] = buildProfile(history, sets)
	}

	return profiles
}

func buildProfile(history []models.RaceEntry, sets *SetAccumulator) *models.HorseProfile {
	t := &horseTally{
		races:          len(history),
		setPerformance: make(map[string]models.SetPerformance),
	}

	for i := range history {
		e := &history[i]
		setKey := normalize.RecordSetKey(&e.RawRecord)

		t.totalExpected += e.ExpectedRank
		if rating := e.GetRating(); rating > 0 {
			t.totalRating += rating
		}
		if len(t.sets) < recentSets {
			t.sets = append(t.sets, setKey)
		}
		if t.oddsSeen < recentOdds {
			t.oddsSeen++
			if odds := e.GetOdds(); odds > 0 {
				t.odds = append(t.odds, odds)
			}
		}

		perf := t.setPerformance[setKey]
		perf.Count++

		if e.FinishPosition != nil {
			finish := *e.FinishPosition
			t.totalFinish += finish
			// entries without odds carry no expected rank
			if e.ExpectedRank > 0 {
				t.totalRankDiff += float64(finish) - e.ExpectedRank
			}
			if finish == 1 {
				t.wins++
				perf.Wins++
			}
			if finish <= 3 {
				t.top3++
			}
			if len(t.finishes) < recentFinishes {
				t.finishes = append(t.finishes, finish)
			}
			if e.FinishTime != nil && *e.FinishTime > 0 {
				t.finishTimes = append(t.finishTimes, *e.FinishTime)
			}
			perf.TotalFinish += finish
		}
		t.setPerformance[setKey] = perf

		if sets != nil {
			sets.Observe(setKey, e.FinishPosition)
		}
	}

	latest := history[0]
	profile := &models.HorseProfile{
		ID:                 latest.HorseID,
		Name:               latest.HorseName,
		BloodlineName:      latest.BloodlineName,
		Races:              t.races,
		Wins:               t.wins,
		Top3:               t.top3,
		Last5Finishes:      nonNilInts(t.finishes),
		Last3EquipmentSets: t.sets,
		FinishTimeStdDev:   normalize.StandardDeviation(t.finishTimes),
		SetPerformance:     t.setPerformance,
	}

	if t.races > 0 {
		n := float64(t.races)
		profile.WinRate = float64(t.wins) / n
		profile.Top3Rate = float64(t.top3) / n
		profile.AvgFinish = float64(t.totalFinish) / n
		profile.AvgRating = t.totalRating / n
		profile.AvgExpectedRank = t.totalExpected / n
		profile.AvgRankDifference = t.totalRankDiff / n
	}
	if len(t.odds) > 0 {
		var sum float64
		for _, o := range t.odds {
			sum += o
		}
		profile.AvgOddsLast3 = sum / float64(len(t.odds))
	}

	return profile
}

// nonNilInts encodes empty buffers as [] instead of null
func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
