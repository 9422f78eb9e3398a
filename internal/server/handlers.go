package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/liftwise/internal/models"
	"github.com/claude/liftwise/internal/storage"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	profile, err := s.db.GetProfile(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	profile.UserID = userID

	if profile.FitnessLevel == "" {
		profile.FitnessLevel = models.LevelBeginner
	}
	if !validFitnessLevel(profile.FitnessLevel) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown fitness level " + profile.FitnessLevel})
		return
	}

	if err := s.db.UpsertProfile(r.Context(), &profile); err != nil {
		s.log.Error("profile upsert error", "user", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func validFitnessLevel(level string) bool {
	switch level {
	case models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced:
		return true
	}
	return false
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	profile, err := s.db.GetProfile(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	plan := s.generator.GeneratePlan(r.Context(), profile)
	if err := s.db.InsertPlan(r.Context(), userID, plan); err != nil {
		s.log.Error("plan insert error", "user", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("plan generated", "user", userID, "plan", plan.PlanID)
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	plans, err := s.db.ListPlans(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := mustPlanID(w, r)
	if !ok {
		return
	}

	rec, err := s.db.GetPlan(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := mustPlanID(w, r)
	if !ok {
		return
	}

	err := s.db.DeletePlan(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type adjustRequest struct {
	Feedback string `json:"feedback"`
}

func (s *Server) handleAdjustPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := mustPlanID(w, r)
	if !ok {
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Feedback) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "feedback is required"})
		return
	}

	rec, err := s.db.GetPlan(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	profile, err := s.db.GetProfile(r.Context(), rec.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	adjustment, err := s.adjuster.AdjustPlan(r.Context(), rec.UserID, rec.Plan, profile, req.Feedback)
	if err != nil {
		s.log.Error("adjust error", "plan", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Persist only when something actually changed.
	out := adjustment.AdjustedPlan
	if len(adjustment.Applied) > 0 {
		if err := s.db.UpdatePlan(r.Context(), out); err != nil {
			s.log.Error("plan update error", "plan", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	if n := len(out.AdjustmentHistory); n > 0 && len(adjustment.Applied)+len(adjustment.Skipped) > 0 {
		latest := out.AdjustmentHistory[n-1]
		if err := s.db.InsertAdjustment(r.Context(), out.PlanID, latest); err != nil {
			s.log.Warn("adjustment history insert failed", "plan", id, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, adjustment)
}

func (s *Server) handleContraindications(w http.ResponseWriter, r *http.Request) {
	rules, err := s.db.ListContraindications(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// mustPlanID parses the {id} route param, writing a 400 on failure.
func mustPlanID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plan id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
