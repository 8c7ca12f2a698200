// Package aggregation turns the raw record table into horse profiles, annotated
// races and global equipment-set statistics.
package aggregation

import (
	"github.com/yourusername/zed-insights/internal/models"
)

// Grouping is the output of the race grouping stage
type Grouping struct {
	Races     map[string]*models.RaceGroup
	RaceOrder []string           // race ids in order of first appearance
	Entries   []models.RaceEntry // every annotated entry in input order
	Dropped   int                // records missing race_id or horse_id
}

// GroupRaces partitions complete records by race and annotates each entry with
// its expected rank: odds/totalOdds*entries when the race carries odds,
// otherwise entries/2.
func GroupRaces(records []models.RawRecord) *Grouping {
	g := &Grouping{Races: make(map[string]*models.RaceGroup)}

	// position of each kept record inside its race, so Entries can be rebuilt in input order
	type slot struct {
		raceID string
		index  int
	}
	slots := make([]slot, 0, len(records))

	for _, rec := range records {
		if !rec.IsComplete() {
			g.Dropped++
			continue
		}

		group, ok := g.Races[rec.RaceID]
		if !ok {
			group = &models.RaceGroup{RaceID: rec.RaceID}
			g.Races[rec.RaceID] = group
			g.RaceOrder = append(g.RaceOrder, rec.RaceID)
		}
		group.Entries = append(group.Entries, models.RaceEntry{RawRecord: rec})
		group.TotalOdds += rec.GetOdds()
		slots = append(slots, slot{raceID: rec.RaceID, index: len(group.Entries) - 1})
	}

	for _, raceID := range g.RaceOrder {
		annotate(g.Races[raceID])
	}

	g.Entries = make([]models.RaceEntry, len(slots))
	for i, s := range slots {
		g.Entries[i] = g.Races[s.raceID].Entries[s.index]
	}

	return g
}

func annotate(group *models.RaceGroup) {
	n := float64(len(group.Entries))
	for i := range group.Entries {
		if group.TotalOdds > 0 {
			group.Entries[i].ExpectedRank = group.Entries[i].GetOdds() / group.TotalOdds * n
		} else {
			group.Entries[i].ExpectedRank = n / 2
		}
	}
}
