package models

// SetPerformance tracks how a horse fared with one equipment set
type SetPerformance struct {
	Count       int `json:"count"`
	Wins        int `json:"wins"`
	TotalFinish int `json:"total_finish"`
}

// AvgFinish returns the average finish position with this set
func (s SetPerformance) AvgFinish() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.TotalFinish) / float64(s.Count)
}

// HorseProfile is the derived performance profile of a single horse
type HorseProfile struct {
	ID                 string                    `json:"id"`
	Name               string                    `json:"name"`
	BloodlineName      string                    `json:"bloodline"`
	Races              int                       `json:"races"`
	Wins               int                       `json:"wins"`
	Top3               int                       `json:"top3"`
	WinRate            float64                   `json:"win_rate"`
	Top3Rate           float64                   `json:"top3_rate"`
	AvgFinish          float64                   `json:"avg_finish"`
	AvgRating          float64                   `json:"avg_rating"`
	Last5Finishes      []int                     `json:"last5_finishes"`
	Last3EquipmentSets []string                  `json:"last3_equipment_sets"`
	AvgOddsLast3       float64                   `json:"avg_odds_last3"`
	FinishTimeStdDev   float64                   `json:"finish_time_std_dev"`
	AvgExpectedRank    float64                   `json:"avg_expected_rank"`
	AvgRankDifference  float64                   `json:"avg_rank_difference"`
	SetPerformance     map[string]SetPerformance `json:"set_performance"`
}

// EquipmentSetStats holds global performance for one equipment set
type EquipmentSetStats struct {
	SetKey    string  `json:"set_key"`
	Count     int     `json:"count"`
	Entries   int     `json:"entries"`
	Wins      int     `json:"wins"`
	WinRate   float64 `json:"win_rate"`
	AvgFinish float64 `json:"avg_finish"`
}
