package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/meur/cardforge/internal/models"
	"github.com/meur/cardforge/internal/storage"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the rarity and cost distribution of a stored run",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.String("db", getEnv("DB_PATH", "./cardforge.db"), "SQLite database path")
	f.String("run", "", "Run ID (defaults to the latest run)")
}

func runStats(cmd *cobra.Command, _ []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	runID, _ := cmd.Flags().GetString("run")

	store, err := storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	var run *models.Run
	if runID == "" {
		run, err = store.LatestRun()
	} else {
		run, err = store.GetRun(runID)
		if err == nil && run == nil {
			err = fmt.Errorf("run %s not found", runID)
		}
	}
	if err != nil {
		return err
	}

	titles, err := store.RarityCounts(run.ID, "titles")
	if err != nil {
		return err
	}
	chars, err := store.RarityCounts(run.ID, "characters")
	if err != nil {
		return err
	}
	costs, err := store.CostCounts(run.ID)
	if err != nil {
		return err
	}

	writeStats(cmd.OutOrStdout(), run, titles, chars, costs)
	return nil
}

func writeStats(out io.Writer, run *models.Run, titles, chars []models.TierCount, costs []models.CostCount) {
	fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "%d titles, %d characters\n\n", run.TitleCount, run.CharacterCount)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RARITY\tTITLES\tCHARACTERS")
	charCounts := make(map[models.Rarity]int, len(chars))
	for _, c := range chars {
		charCounts[c.Rarity] = c.Count
	}
	titleCounts := make(map[models.Rarity]int, len(titles))
	for _, t := range titles {
		titleCounts[t.Rarity] = t.Count
	}
	for _, r := range models.AllRarities() {
		fmt.Fprintf(w, "%s\t%d\t%d\n", r, titleCounts[r], charCounts[r])
	}
	w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COST\tTITLES")
	for _, c := range costs {
		fmt.Fprintf(w, "%d\t%d\n", c.Cost, c.Count)
	}
	w.Flush()
}
