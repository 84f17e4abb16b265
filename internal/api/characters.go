package api

import (
	"fmt"
	"net/http"

	"github.com/meur/cardforge/internal/models"
)

// handleGetCharacters returns a page of curated characters
func (s *Server) handleGetCharacters(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID := s.resolveRun(w, r)
	if runID == "" {
		return
	}

	chars, err := s.store.GetCharacters(runID, limit, offset)
	if err != nil {
		s.log.Error("get characters", "run", runID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch characters")
		return
	}
	total, err := s.store.CountCharacters(runID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count characters")
		return
	}

	respondJSON(w, http.StatusOK, models.CharacterList{
		Characters: chars,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	})
}

// handleGetCharacter returns a single curated character
func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid character id")
		return
	}

	runID := s.resolveRun(w, r)
	if runID == "" {
		return
	}

	char, err := s.store.GetCharacter(runID, id)
	if err != nil {
		s.log.Error("get character", "run", runID, "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch character")
		return
	}
	if char == nil {
		respondError(w, http.StatusNotFound, "Character not found")
		return
	}

	respondJSON(w, http.StatusOK, char)
}

type batchRequest struct {
	IDs []int `json:"ids"`
}

// handleGetCharactersBatch returns the curated characters among the
// requested IDs
func (s *Server) handleGetCharactersBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "ids is required")
		return
	}
	if len(req.IDs) > maxBatchSize {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d ids per request", maxBatchSize))
		return
	}

	runID := s.resolveRun(w, r)
	if runID == "" {
		return
	}

	chars, err := s.store.GetCharactersByIDs(runID, req.IDs)
	if err != nil {
		s.log.Error("batch characters", "run", runID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch characters")
		return
	}

	respondJSON(w, http.StatusOK, models.CharacterList{
		Characters: chars,
		Total:      len(chars),
		Limit:      len(req.IDs),
	})
}
