package main

import (
	"fmt"

	"github.com/meur/cardforge/internal/catalog"
	"github.com/meur/cardforge/internal/curate"
	"github.com/meur/cardforge/internal/storage"
	"github.com/spf13/cobra"
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Build a card collection from catalog exports",
	Long: `Reads a JSON array of anime titles and a JSON array of characters, assigns
rarity, cost and points to the most-rated titles, selects the most popular
characters of each curated title, and writes both collections under --out.

With --db the result is also stored as a new run for the API server.`,
	RunE: runCurate,
}

func init() {
	f := curateCmd.Flags()
	f.String("titles", "", "Path to the anime titles JSON array (required)")
	f.String("characters", "", "Path to the characters JSON array (required)")
	f.String("out", ".", "Output directory")
	f.String("db", "", "SQLite database to store the run in")
	f.String("config", "", "YAML file overriding the curation defaults")
	curateCmd.MarkFlagRequired("titles")
	curateCmd.MarkFlagRequired("characters")
}

func runCurate(cmd *cobra.Command, _ []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	titlesPath, _ := cmd.Flags().GetString("titles")
	charsPath, _ := cmd.Flags().GetString("characters")
	outDir, _ := cmd.Flags().GetString("out")
	dbPath, _ := cmd.Flags().GetString("db")
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg, err := curate.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	pools, err := catalog.LoadPools(cmd.Context(), titlesPath, charsPath)
	if err != nil {
		return err
	}
	if n := pools.TitleStats.Skipped; n > 0 {
		log.Warn("skipped title records without id", "count", n)
	}
	if n := pools.CharacterStats.Skipped; n > 0 {
		log.Warn("skipped character records without id", "count", n)
	}
	log.Info("loaded pools", "titles", len(pools.Titles), "characters", len(pools.Characters))

	curator, err := curate.New(cfg, log)
	if err != nil {
		return err
	}
	res, err := curator.Run(pools.Titles, pools.Characters)
	if err != nil {
		return fmt.Errorf("curation failed: %w", err)
	}

	path, err := catalog.WriteTitles(outDir, res.Titles)
	if err != nil {
		return err
	}
	log.Info("wrote titles", "path", path, "count", len(res.Titles))

	path, err = catalog.WriteCharacters(outDir, res.Characters)
	if err != nil {
		return err
	}
	log.Info("wrote characters", "path", path, "count", len(res.Characters))

	if dbPath == "" {
		return nil
	}
	store, err := storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	run, err := store.SaveRun(res.Titles, res.Characters, cfg)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	log.Info("stored run", "run", run.ID, "db", dbPath)
	fmt.Fprintln(cmd.OutOrStdout(), run.ID)
	return nil
}
