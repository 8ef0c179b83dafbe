package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alexanderramin/civic/internal/catalog"
	"github.com/alexanderramin/civic/internal/domain"
)

const maxCatalogLimit = 200

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	recs, err := s.catalog.PopularActions(r.Context(), limitParam(r, s.opts.PoolLimit, maxCatalogLimit))
	s.respondRecords(w, recs, err)
}

func (s *Server) handlePersonalized(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	recs, err := s.catalog.PersonalizedActions(r.Context(), user, limitParam(r, s.opts.PoolLimit, maxCatalogLimit))
	s.respondRecords(w, recs, err)
}

func (s *Server) handleCatalogStart(w http.ResponseWriter, r *http.Request) {
	err := s.catalog.StartAction(r.Context(), chi.URLParam(r, "user"), chi.URLParam(r, "id"))
	s.respondWrite(w, err)
}

func (s *Server) handleCatalogComplete(w http.ResponseWriter, r *http.Request) {
	var req catalog.CompleteRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	err := s.catalog.CompleteAction(r.Context(), chi.URLParam(r, "user"), chi.URLParam(r, "id"), req.ImpactReported, req.Feedback)
	s.respondWrite(w, err)
}

func (s *Server) respondRecords(w http.ResponseWriter, recs []*domain.ActionRecord, err error) {
	if err != nil {
		s.respondCatalogError(w, err)
		return
	}
	if recs == nil {
		recs = []*domain.ActionRecord{}
	}
	s.respondJSON(w, http.StatusOK, catalog.ActionsResponse{Actions: recs})
}

func (s *Server) respondWrite(w http.ResponseWriter, err error) {
	if err != nil {
		s.respondCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrUnknownAction) {
		s.respondError(w, http.StatusNotFound, CodeNotFound, err.Error())
		return
	}
	s.logger.Warn("catalog request failed", "error", err)
	s.respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "catalog unavailable")
}
