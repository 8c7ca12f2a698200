package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/zed-insights/internal/insights"
)

var (
	entrantsFile string
	summaryJSON  bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize the entrants of an upcoming race",
	RunE: func(cmd *cobra.Command, args []string) error {
		entrants, err := insights.LoadEntrants(entrantsFile)
		if err != nil {
			return err
		}
		ds, err := loadDataset(cmd)
		if err != nil {
			return err
		}

		summary := insights.BuildRaceSummary(ds, entrants, time.Now())
		if summaryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		for _, e := range summary.Entrants {
			marker := ""
			if e.IsUser {
				marker = " *"
			}
			fmt.Printf("[%s] %s%s %s\n", e.GateLabel, e.Name, marker, e.StarLabel)
			fmt.Printf("     set: %s\n", e.CurrentSetKey)
			if !e.HasHistory() {
				fmt.Println("     no race history")
				continue
			}
			p := e.Profile
			fmt.Printf("     %d races, win %.1f%%, top3 %.1f%%, avg finish %.2f, last5 %s\n",
				p.Races, p.WinRate*100, p.Top3Rate*100, p.AvgFinish, joinInts(p.Last5Finishes))
			if e.OwnSetRecord != nil {
				fmt.Printf("     own record with set: %d races, %d wins\n", e.OwnSetRecord.Count, e.OwnSetRecord.Wins)
			}
			if e.SetStats != nil {
				fmt.Printf("     set globally: %d entries, win %.1f%%\n", e.SetStats.Entries, e.SetStats.WinRate*100)
			}
			if len(e.Strategies) > 0 {
				fmt.Printf("     strategies: %s\n", strings.Join(e.Strategies, "; "))
			}
		}
		if !summary.DataAsOf.IsZero() {
			fmt.Printf("\nData as of %s\n", summary.DataAsOf.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVarP(&entrantsFile, "entrants", "e", "", "YAML file listing the race entrants")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the summary as JSON")
	_ = summaryCmd.MarkFlagRequired("entrants")
}
