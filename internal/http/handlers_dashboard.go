package http

import (
	"net/http"

	"duan/internal/charts"
	"duan/internal/core"
	"duan/internal/log"
)

// serveSeries loads the full project set and writes the aggregation built
// from it. Series are computed per request; the project set only changes on
// import, and the aggregations are cheap relative to a spreadsheet decode.
func (s *Server) serveSeries(w http.ResponseWriter, r *http.Request, build func([]core.Project) any) {
	projects, err := s.store.ListAll(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Loading projects for dashboard failed",
			log.FieldOperation, log.OpList, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to load projects")
		return
	}
	writeJSON(w, http.StatusOK, build(projects))
}

func (s *Server) handleInvestorCounts(w http.ResponseWriter, r *http.Request) {
	s.serveSeries(w, r, func(ps []core.Project) any {
		return charts.ProjectsByInvestor(ps)
	})
}

func (s *Server) handleInvestorValues(w http.ResponseWriter, r *http.Request) {
	s.serveSeries(w, r, func(ps []core.Project) any {
		return charts.TotalValueByInvestor(ps)
	})
}

func (s *Server) handleCosts(w http.ResponseWriter, r *http.Request) {
	all := ParseAllFlag(r.URL.Query())
	s.serveSeries(w, r, func(ps []core.Project) any {
		if all {
			return charts.AllProjectCosts(ps)
		}
		return charts.ProjectCosts(ps)
	})
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	all := ParseAllFlag(r.URL.Query())
	s.serveSeries(w, r, func(ps []core.Project) any {
		if all {
			return charts.AllProjectCompletionRate(ps)
		}
		return charts.ProjectCompletionRate(ps)
	})
}

func (s *Server) handleTypeRatio(w http.ResponseWriter, r *http.Request) {
	s.serveSeries(w, r, func(ps []core.Project) any {
		return charts.ProjectTypeRatio(ps)
	})
}

func (s *Server) handlePersonnel(w http.ResponseWriter, r *http.Request) {
	s.serveSeries(w, r, func(ps []core.Project) any {
		return charts.PersonnelAllocation(ps)
	})
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	s.serveSeries(w, r, func(ps []core.Project) any {
		return charts.Stats(ps)
	})
}
