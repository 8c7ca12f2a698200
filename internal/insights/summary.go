// Package insights assembles per-entrant summaries for an upcoming race from
// the published dataset.
package insights

import (
	"sort"
	"strconv"
	"time"

	"github.com/yourusername/zed-insights/internal/aggregation"
	"github.com/yourusername/zed-insights/internal/models"
	"github.com/yourusername/zed-insights/internal/normalize"
)

const (
	unknownGate  = 99
	augmentSlots = 3
)

// Entrant is one horse lined up for the current race
type Entrant struct {
	ID       string   `json:"id" yaml:"id" validate:"required"`
	Name     string   `json:"name" yaml:"name"`
	Gate     *int     `json:"gate,omitempty" yaml:"gate"`
	IsUser   bool     `json:"is_user" yaml:"is_user"`
	Augments []string `json:"augments" yaml:"augments" validate:"max=3"`
}

// AugmentInfo pairs an equipped augment with its effect
type AugmentInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// EntrantSummary is everything known about one entrant
type EntrantSummary struct {
	ID              string                    `json:"id"`
	Name            string                    `json:"name"`
	Gate            *int                      `json:"gate,omitempty"`
	GateLabel       string                    `json:"gate_label"`
	IsUser          bool                      `json:"is_user"`
	Profile         *models.HorseProfile      `json:"profile,omitempty"`
	StarLabel       string                    `json:"star_label"`
	CurrentAugments []AugmentInfo             `json:"current_augments"`
	CurrentSetKey   string                    `json:"current_set_key"`
	SetStats        *models.EquipmentSetStats `json:"set_stats,omitempty"`
	OwnSetRecord    *models.SetPerformance    `json:"own_set_record,omitempty"`
	HistoricalSets  []string                  `json:"historical_sets"`
	Strategies      []string                  `json:"strategies"`
}

// HasHistory reports whether the dataset holds a profile for the entrant
func (s *EntrantSummary) HasHistory() bool {
	return s.Profile != nil
}

// RaceSummary is the ordered list of entrant summaries
type RaceSummary struct {
	GeneratedAt time.Time        `json:"generated_at"`
	DataAsOf    time.Time        `json:"data_as_of"`
	Entrants    []EntrantSummary `json:"entrants"`
}

// BuildRaceSummary summarizes entrants ordered by gate; entrants without a gate sort last
func BuildRaceSummary(ds *aggregation.Dataset, entrants []Entrant, now time.Time) *RaceSummary {
	ordered := make([]Entrant, len(entrants))
	copy(ordered, entrants)
	sort.SliceStable(ordered, func(i, j int) bool {
		return gateOrder(ordered[i].Gate) < gateOrder(ordered[j].Gate)
	})

	summary := &RaceSummary{
		GeneratedAt: now,
		DataAsOf:    ds.SourceFetchedAt,
		Entrants:    make([]EntrantSummary, 0, len(ordered)),
	}
	for _, e := range ordered {
		summary.Entrants = append(summary.Entrants, summarize(ds, e))
	}
	return summary
}

func summarize(ds *aggregation.Dataset, e Entrant) EntrantSummary {
	augments := padAugments(e.Augments)
	setKey := normalize.EquipmentSetKey(augments[0], augments[1], augments[2])

	s := EntrantSummary{
		ID:             e.ID,
		Name:           e.Name,
		Gate:           e.Gate,
		GateLabel:      gateLabel(e.Gate),
		IsUser:         e.IsUser,
		StarLabel:      normalize.NoRating,
		CurrentSetKey:  setKey,
		HistoricalSets: []string{},
		Strategies:     models.StrategiesFor(augments[:]...),
	}

	for _, aug := range augments {
		info := AugmentInfo{Name: aug}
		if models.IsKnownAugment(aug) {
			info.Description, _ = models.AugmentDescription(aug)
		}
		s.CurrentAugments = append(s.CurrentAugments, info)
	}

	if stats, ok := ds.EquipmentSetStats(setKey); ok {
		s.SetStats = stats
	}

	if profile, ok := ds.HorseProfile(e.ID); ok {
		s.Profile = profile
		s.StarLabel = normalize.StarRatingLabel(profile.AvgRating)
		s.HistoricalSets = profile.Last3EquipmentSets
		if s.Name == "" {
			s.Name = profile.Name
		}
		if perf, ok := profile.SetPerformance[setKey]; ok {
			s.OwnSetRecord = &perf
		}
	}

	return s
}

// padAugments normalizes the equipped augments into exactly three slots
func padAugments(augments []string) [augmentSlots]string {
	var slots [augmentSlots]string
	for i := range slots {
		if i < len(augments) {
			slots[i] = normalize.EquipmentName(augments[i])
		} else {
			slots[i] = models.NoAugment
		}
	}
	return slots
}

// gateOrder sorts missing and non-positive gates last
func gateOrder(gate *int) int {
	if gate == nil || *gate <= 0 {
		return unknownGate
	}
	return *gate
}

func gateLabel(gate *int) string {
	if gate == nil || *gate <= 0 {
		return "G?"
	}
	return strconv.Itoa(*gate)
}
