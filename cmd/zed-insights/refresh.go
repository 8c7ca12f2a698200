package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/zed-insights/internal/aggregation"
)

var forceRefresh bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the record table and rebuild the dataset once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := orchestrator.Refresh(cmd.Context(), forceRefresh)
		printDatasetSummary(ds)
		return err
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Delete the cached record table snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := orchestrator.InvalidateCache(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Record cache cleared.")
		return nil
	},
}

func init() {
	refreshCmd.Flags().BoolVarP(&forceRefresh, "force", "f", false, "Bypass the cached snapshot")
}

func printDatasetSummary(ds *aggregation.Dataset) {
	if ds == nil {
		return
	}
	s := ds.Summary()
	fmt.Printf("Records:        %d (%d dropped)\n", s.RecordCount, s.DroppedRecords)
	fmt.Printf("Horses:         %d\n", s.Horses)
	fmt.Printf("Races:          %d\n", s.Races)
	fmt.Printf("Equipment sets: %d\n", s.EquipmentSets)
	if !s.SourceFetchedAt.IsZero() {
		fmt.Printf("Data as of:     %s\n", s.SourceFetchedAt.Format("2006-01-02 15:04:05 MST"))
	}
}
