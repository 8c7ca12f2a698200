package aggregation

import (
	"sort"

	"github.com/yourusername/zed-insights/internal/models"
)

type setTally struct {
	count       int
	entries     int
	wins        int
	totalFinish int
}

// SetAccumulator tallies performance per equipment set across the whole table
type SetAccumulator struct {
	tallies map[string]*setTally
}

// NewSetAccumulator creates an empty accumulator
func NewSetAccumulator() *SetAccumulator {
	return &SetAccumulator{tallies: make(map[string]*setTally)}
}

// Observe records one race entry that used the given set
func (a *SetAccumulator) Observe(setKey string, finish *int) {
	t, ok := a.tallies[setKey]
	if !ok {
		t = &setTally{}
		a.tallies[setKey] = t
	}
	t.count++
	t.entries++
	if finish != nil {
		if *finish == 1 {
			t.wins++
		}
		t.totalFinish += *finish
	}
}

// Finalize computes win rate and average finish per set
func (a *SetAccumulator) Finalize() map[string]*models.EquipmentSetStats {
	stats := make(map[string]*models.EquipmentSetStats, len(a.tallies))
	for key, t := range a.tallies {
		s := &models.EquipmentSetStats{
			SetKey:  key,
			Count:   t.count,
			Entries: t.entries,
			Wins:    t.wins,
		}
		if t.entries > 0 {
			s.WinRate = float64(t.wins) / float64(t.entries)
			s.AvgFinish = float64(t.totalFinish) / float64(t.entries)
		}
		stats[key] = s
	}
	return stats
}

// SortedSetStats lists set statistics ordered by set key
func SortedSetStats(stats map[string]*models.EquipmentSetStats) []*models.EquipmentSetStats {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*models.EquipmentSetStats, 0, len(keys))
	for _, k := range keys {
		out = append(out, stats[k])
	}
	return out
}
