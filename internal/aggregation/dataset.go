package aggregation

import (
	"sort"
	"time"

	"github.com/yourusername/zed-insights/internal/models"
)

// Dataset is the immutable result of one aggregation pass. It is built off to
// the side and never modified after Build returns.
type Dataset struct {
	GeneratedAt     time.Time `json:"generated_at"`
	SourceFetchedAt time.Time `json:"source_fetched_at"`
	RecordCount     int       `json:"record_count"`
	DroppedRecords  int       `json:"dropped_records"`

	horses map[string]*models.HorseProfile
	races  map[string]*models.RaceGroup
	sets   map[string]*models.EquipmentSetStats
}

// Summary is the JSON-friendly headline of a dataset
type Summary struct {
	GeneratedAt     time.Time `json:"generated_at"`
	SourceFetchedAt time.Time `json:"source_fetched_at"`
	RecordCount     int       `json:"record_count"`
	DroppedRecords  int       `json:"dropped_records"`
	Horses          int       `json:"horses"`
	Races           int       `json:"races"`
	EquipmentSets   int       `json:"equipment_sets"`
}

// EmptyDataset returns a dataset with no horses, races or sets
func EmptyDataset() *Dataset {
	return &Dataset{
		horses: map[string]*models.HorseProfile{},
		races:  map[string]*models.RaceGroup{},
		sets:   map[string]*models.EquipmentSetStats{},
	}
}

// Build runs race grouping followed by horse and equipment-set aggregation
func Build(records []models.RawRecord, fetchedAt, now time.Time) *Dataset {
	grouping := GroupRaces(records)

	sets := NewSetAccumulator()
	horses := BuildHorseProfiles(grouping.Entries, sets)

	return &Dataset{
		GeneratedAt:     now,
		SourceFetchedAt: fetchedAt,
		RecordCount:     len(records),
		DroppedRecords:  grouping.Dropped,
		horses:          horses,
		races:           grouping.Races,
		sets:            sets.Finalize(),
	}
}

// IsEmpty reports whether the dataset holds no horse profiles
func (d *Dataset) IsEmpty() bool {
	return len(d.horses) == 0
}

// HorseProfile returns the profile for a horse
func (d *Dataset) HorseProfile(horseID string) (*models.HorseProfile, bool) {
	p, ok := d.horses[horseID]
	return p, ok
}

// RaceGroup returns the annotated race
func (d *Dataset) RaceGroup(raceID string) (*models.RaceGroup, bool) {
	g, ok := d.races[raceID]
	return g, ok
}

// EquipmentSetStats returns global statistics for a set key
func (d *Dataset) EquipmentSetStats(setKey string) (*models.EquipmentSetStats, bool) {
	s, ok := d.sets[setKey]
	return s, ok
}

// ListEquipmentSetStats returns every set ordered by key
func (d *Dataset) ListEquipmentSetStats() []*models.EquipmentSetStats {
	return SortedSetStats(d.sets)
}

// HorseIDs returns every horse id in sorted order
func (d *Dataset) HorseIDs() []string {
	ids := make([]string, 0, len(d.horses))
	for id := range d.horses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HorseCount returns the number of profiles
func (d *Dataset) HorseCount() int { return len(d.horses) }

// RaceCount returns the number of races
func (d *Dataset) RaceCount() int { return len(d.races) }

// EquipmentSetCount returns the number of distinct sets
func (d *Dataset) EquipmentSetCount() int { return len(d.sets) }

// Summary returns headline counts
func (d *Dataset) Summary() Summary {
	return Summary{
		GeneratedAt:     d.GeneratedAt,
		SourceFetchedAt: d.SourceFetchedAt,
		RecordCount:     d.RecordCount,
		DroppedRecords:  d.DroppedRecords,
		Horses:          len(d.horses),
		Races:           len(d.races),
		EquipmentSets:   len(d.sets),
	}
}

// Age returns how long ago the source data was fetched
func (d *Dataset) Age(now time.Time) time.Duration {
	if d.SourceFetchedAt.IsZero() {
		return 0
	}
	return now.Sub(d.SourceFetchedAt)
}
