package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/zed-insights/internal/aggregation"
	"github.com/yourusername/zed-insights/internal/normalize"
)

var (
	setsLimit  int
	setsSortBy string
)

var horseCmd = &cobra.Command{
	Use:   "horse <horse-id>",
	Short: "Show the derived profile of one horse",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		p, ok := ds.HorseProfile(args[0])
		if !ok {
			return fmt.Errorf("horse %q not found", args[0])
		}

		fmt.Printf("%s (%s) %s\n", p.Name, p.ID, normalize.StarRatingLabel(p.AvgRating))
		fmt.Printf("Bloodline:        %s\n", p.BloodlineName)
		fmt.Printf("Races:            %d\n", p.Races)
		fmt.Printf("Wins / Top 3:     %d / %d (%.1f%% / %.1f%%)\n", p.Wins, p.Top3, p.WinRate*100, p.Top3Rate*100)
		fmt.Printf("Avg finish:       %.2f\n", p.AvgFinish)
		fmt.Printf("Avg rating:       %.2f\n", p.AvgRating)
		fmt.Printf("Expected rank:    %.2f (diff %+.2f)\n", p.AvgExpectedRank, p.AvgRankDifference)
		fmt.Printf("Avg odds last 3:  %.2f\n", p.AvgOddsLast3)
		fmt.Printf("Finish time sd:   %.3f\n", p.FinishTimeStdDev)
		fmt.Printf("Last 5 finishes:  %s\n", joinInts(p.Last5Finishes))
		fmt.Println("Recent sets:")
		for _, key := range p.Last3EquipmentSets {
			perf := p.SetPerformance[key]
			fmt.Printf("  %-50s %d races, %d wins, avg %.2f\n", key, perf.Count, perf.Wins, perf.AvgFinish())
		}
		return nil
	},
}

var raceCmd = &cobra.Command{
	Use:   "race <race-id>",
	Short: "Show the entries of one historical race",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		group, ok := ds.RaceGroup(args[0])
		if !ok {
			return fmt.Errorf("race %q not found", args[0])
		}

		fmt.Printf("Race %s: %d entries, total odds %.2f\n", group.RaceID, group.EntryCount(), group.TotalOdds)
		for _, e := range group.Entries {
			finish := "-"
			if e.FinishPosition != nil {
				finish = fmt.Sprintf("%d", *e.FinishPosition)
			}
			fmt.Printf("  %-3s %-24s odds %6.2f  expected %5.2f\n", finish, e.HorseName, e.GetOdds(), e.ExpectedRank)
		}
		return nil
	},
}

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List global equipment set statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		stats := ds.ListEquipmentSetStats()
		switch setsSortBy {
		case "win_rate":
			sort.SliceStable(stats, func(i, j int) bool { return stats[i].WinRate > stats[j].WinRate })
		case "avg_finish":
			sort.SliceStable(stats, func(i, j int) bool { return stats[i].AvgFinish < stats[j].AvgFinish })
		case "entries", "":
		default:
			return fmt.Errorf("unknown sort key %q", setsSortBy)
		}
		if setsLimit > 0 && len(stats) > setsLimit {
			stats = stats[:setsLimit]
		}

		fmt.Printf("%-50s %8s %6s %8s %8s\n", "SET", "ENTRIES", "WINS", "WIN%", "AVG")
		for _, s := range stats {
			fmt.Printf("%-50s %8d %6d %7.1f%% %8.2f\n", s.SetKey, s.Entries, s.Wins, s.WinRate*100, s.AvgFinish)
		}
		return nil
	},
}

func init() {
	setsCmd.Flags().IntVarP(&setsLimit, "limit", "n", 20, "Maximum number of sets to show (0 for all)")
	setsCmd.Flags().StringVar(&setsSortBy, "sort", "entries", "Sort by entries, win_rate or avg_finish")
}

// loadDataset runs a non-forced refresh so a fresh snapshot is reused
func loadDataset(cmd *cobra.Command) (*aggregation.Dataset, error) {
	ds, err := orchestrator.Refresh(cmd.Context(), false)
	if err != nil {
		if ds == nil || ds.IsEmpty() {
			return nil, err
		}
		appLog.WithError(err).Warn("Refresh failed, using previous dataset")
	}
	return ds, nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, " ")
}
