package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meur/cardforge/internal/models"
	"github.com/meur/cardforge/internal/storage"
)

// handleListRuns returns all stored curation runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		s.log.Error("list runs", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch runs")
		return
	}
	respondJSON(w, http.StatusOK, runs)
}

// handleLatestRun returns the most recent run
func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.LatestRun()
	if errors.Is(err, storage.ErrNoRuns) {
		respondError(w, http.StatusNotFound, "No curation runs yet")
		return
	}
	if err != nil {
		s.log.Error("latest run", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch run")
		return
	}
	respondJSON(w, http.StatusOK, run)
}

// handleGetRun returns a run by ID along with its distributions
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, err := s.store.GetRun(runID)
	if err != nil {
		s.log.Error("get run", "run", runID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch run")
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}

	titleRarities, err := s.store.RarityCounts(runID, "titles")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch distribution")
		return
	}
	charRarities, err := s.store.RarityCounts(runID, "characters")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch distribution")
		return
	}
	costs, err := s.store.CostCounts(runID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch distribution")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run":                run,
		"title_rarities":     titleRarities,
		"character_rarities": charRarities,
		"costs":              costs,
	})
}

// handleGetRarities returns the tier display configuration
func (s *Server) handleGetRarities(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.DefaultRarityTiers())
}
