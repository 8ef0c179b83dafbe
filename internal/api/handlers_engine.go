package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alexanderramin/civic/internal/catalog"
	"github.com/alexanderramin/civic/internal/domain"
)

type generateResponse struct {
	Generation    uint64               `json:"generation"`
	Context       domain.IntentContext `json:"context"`
	Actions       []domain.Action      `json:"actions"`
	CatalogCount  int                  `json:"catalogCount"`
	FallbackCount int                  `json:"fallbackCount"`
	PoolErrors    []string             `json:"poolErrors,omitempty"`
	Stale         bool                 `json:"stale"`
}

type actionsResponse struct {
	Context domain.IntentContext `json:"context"`
	Actions []domain.Action      `json:"actions"`
	Total   int                  `json:"total"`
}

type filterRequest struct {
	SearchQuery    string   `json:"searchQuery" validate:"max=200"`
	Tags           []string `json:"tags" validate:"max=20,dive,max=40"`
	Urgency        []int    `json:"urgency" validate:"max=5,dive,min=1,max=5"`
	Impact         []int    `json:"impact" validate:"max=5,dive,min=1,max=5"`
	TimeCommitment []string `json:"timeCommitment" validate:"max=10,dive,max=80"`
}

func (f filterRequest) state() domain.FilterState {
	return domain.FilterState{
		SearchQuery:    f.SearchQuery,
		Tags:           f.Tags,
		Urgency:        f.Urgency,
		Impact:         f.Impact,
		TimeCommitment: f.TimeCommitment,
	}
}

type rateRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

type timeSpentRequest struct {
	Seconds int64 `json:"seconds" validate:"required,min=1,max=86400"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var ic domain.IntentContext
	if !s.decode(w, r, &ic) {
		return
	}
	rec := s.engine.GenerateActions(r.Context(), ic)
	s.respondJSON(w, http.StatusOK, generateResponse{
		Generation:    rec.Generation,
		Context:       rec.Context,
		Actions:       rec.Actions,
		CatalogCount:  rec.CatalogCount,
		FallbackCount: rec.FallbackCount,
		PoolErrors:    rec.PoolErrors,
		Stale:         rec.Stale,
	})
}

func (s *Server) handleCurrent(w http.ResponseWriter, _ *http.Request) {
	actions := s.engine.Current()
	s.respondJSON(w, http.StatusOK, actionsResponse{
		Context: s.engine.CurrentContext(),
		Actions: nonNil(actions),
		Total:   len(actions),
	})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !s.decode(w, r, &req) {
		return
	}
	actions := s.engine.FilterActions(req.state())
	s.respondJSON(w, http.StatusOK, actionsResponse{
		Context: s.engine.CurrentContext(),
		Actions: nonNil(actions),
		Total:   len(actions),
	})
}

// heldAction resolves {id} against the current result set.
func (s *Server) heldAction(w http.ResponseWriter, r *http.Request) (domain.Action, bool) {
	id := chi.URLParam(r, "id")
	a, ok := s.engine.Lookup(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, CodeNotFound, "action "+id+" is not in the current result set")
	}
	return a, ok
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	a, ok := s.heldAction(w, r)
	if !ok {
		return
	}
	s.engine.RecordView(r.Context(), []domain.Action{a})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	a, ok := s.heldAction(w, r)
	if !ok {
		return
	}
	s.engine.RecordSave(r.Context(), a.ID)
	s.respondHeld(w, a.ID)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	a, ok := s.heldAction(w, r)
	if !ok {
		return
	}
	var req catalog.CompleteRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	s.engine.RecordCompletion(r.Context(), a.ID, req.ImpactReported, req.Feedback)
	s.respondHeld(w, a.ID)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	a, ok := s.heldAction(w, r)
	if !ok {
		return
	}
	s.engine.StartAction(r.Context(), a.ID)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	a, ok := s.heldAction(w, r)
	if !ok {
		return
	}
	var req rateRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.engine.RecordRating(r.Context(), a.ID, req.Rating, req.Feedback)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondHeld(w http.ResponseWriter, id string) {
	a, _ := s.engine.Lookup(id)
	s.respondJSON(w, http.StatusOK, a)
}

func (s *Server) handlePreferences(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Preferences())
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	data, err := s.engine.ExportPreferenceState()
	if err != nil {
		s.logger.Error("preference export failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, CodeInternal, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="preferences-`+time.Now().UTC().Format("20060102")+`.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleTimeSpent(w http.ResponseWriter, r *http.Request) {
	var req timeSpentRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.engine.RecordTimeSpent(r.Context(), req.Seconds)
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(actions []domain.Action) []domain.Action {
	if actions == nil {
		return []domain.Action{}
	}
	return actions
}
