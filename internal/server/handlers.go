package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/apisbr/apisbr/pkg/buildinfo"
	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/integrations/dadosabertos"
	"github.com/apisbr/apisbr/pkg/integrations/ibge/agregados"
	"github.com/apisbr/apisbr/pkg/integrations/ibge/localidades"
	"github.com/apisbr/apisbr/pkg/integrations/ipeadata"
	"github.com/apisbr/apisbr/pkg/labels"
	"github.com/apisbr/apisbr/pkg/period"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func refresh(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

func periodParam(r *http.Request) (period.Period, error) {
	return period.Parse(r.URL.Query().Get("period"))
}

func (s *Server) handleSearchDatasets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, r, apierrors.New(apierrors.ErrCodeInvalidInput, "invalid page %q", raw))
			return
		}
		page = n
	}
	results, err := s.src.Datasets.Search(r.Context(), q.Get("title"), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTable(w, r, dadosabertos.SearchTable(results))
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter := dadosabertos.ResourceFilter{
		Period:  p,
		Format:  r.URL.Query().Get("file_type"),
		Refresh: refresh(r),
	}
	resources, err := s.src.Datasets.Resources(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTable(w, r, dadosabertos.ResourcesTable(resources))
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.src.Localities.FetchStates(r.Context(), refresh(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTable(w, r, localidades.StatesTable(states))
}

func (s *Server) handleMunicipalities(w http.ResponseWriter, r *http.Request) {
	var (
		ms  []localidades.Municipality
		err error
	)
	if uf := r.URL.Query().Get("uf"); uf != "" {
		ms, err = s.src.Localities.FetchStateMunicipalities(r.Context(), uf, refresh(r))
	} else {
		ms, err = s.src.Localities.FetchMunicipalities(r.Context(), refresh(r))
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTable(w, r, localidades.MunicipalitiesTable(ms))
}

func (s *Server) handleMunicipality(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	name, err := s.src.Localities.MunicipalityName(r.Context(), code, refresh(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"codigo": code, "nome": name})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	md, err := s.src.Aggregates.FetchMetadata(r.Context(), chi.URLParam(r, "id"), refresh(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

// handleAggregateData serves /ibge/agregados/{id}/dados, where id is
// "<aggregate>-<variables>".
func (s *Server) handleAggregateData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := agregados.Query{
		Identifier: chi.URLParam(r, "id"),
		Level:      q.Get("nivel"),
		Periods:    q.Get("periodos"),
		Refresh:    refresh(r),
	}
	if raw := q.Get("localidades"); raw != "" {
		query.Localities = strings.Split(raw, ",")
	}
	if raw := q.Get("classificacao"); raw != "" {
		classify, err := agregados.ParseClassification(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		query.Classify = classify
	}

	t, err := s.src.Aggregates.FetchData(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTable(w, r, t)
}

func (s *Server) handleSeriesValues(w http.ResponseWriter, r *http.Request) {
	p, err := periodParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter := ipeadata.ValuesFilter{
		Period:  p,
		Level:   r.URL.Query().Get("level"),
		Refresh: refresh(r),
	}
	t, err := s.src.Series.FetchValues(r.Context(), chi.URLParam(r, "code"), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTable(w, r, t)
}

func (s *Server) handleUF(w http.ResponseWriter, r *http.Request) {
	uf, err := labels.Lookup(chi.URLParam(r, "uf"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uf)
}
