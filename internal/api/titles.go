package api

import (
	"net/http"
	"strconv"

	"github.com/meur/cardforge/internal/models"
	"github.com/meur/cardforge/internal/storage"
)

// handleGetTitles returns a page of curated titles, optionally filtered by
// rarity and cost
func (s *Server) handleGetTitles(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := storage.TitleFilter{Limit: limit, Offset: offset}
	q := r.URL.Query()
	if v := q.Get("rarity"); v != "" {
		rarity, err := models.ParseRarity(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid rarity")
			return
		}
		filter.Rarity = &rarity
	}
	if v := q.Get("cost"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil || cost < 1 {
			respondError(w, http.StatusBadRequest, "Invalid cost")
			return
		}
		filter.Cost = cost
	}

	runID := s.resolveRun(w, r)
	if runID == "" {
		return
	}

	titles, total, err := s.store.GetTitles(runID, filter)
	if err != nil {
		s.log.Error("get titles", "run", runID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch titles")
		return
	}

	respondJSON(w, http.StatusOK, models.TitleList{
		Titles:     titles,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	})
}

// handleGetTitle returns a single curated title
func (s *Server) handleGetTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid title id")
		return
	}

	runID := s.resolveRun(w, r)
	if runID == "" {
		return
	}

	title, err := s.store.GetTitle(runID, id)
	if err != nil {
		s.log.Error("get title", "run", runID, "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch title")
		return
	}
	if title == nil {
		respondError(w, http.StatusNotFound, "Title not found")
		return
	}

	respondJSON(w, http.StatusOK, title)
}
