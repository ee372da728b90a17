package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"TickerScope/internal/collector"
	"TickerScope/internal/model"
	"TickerScope/internal/recorder"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyze serves from the cache unless refresh is set.
func (s *Server) analyze(r *http.Request, ticker string, refresh bool) (*model.Analysis, error) {
	if !refresh && s.cache != nil {
		if a, ok := s.cache.Get(ticker); ok {
			return a, nil
		}
	}
	a, err := s.collector.Analyze(r.Context(), ticker)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(a)
	}
	return a, nil
}

func (s *Server) writeAnalyzeError(w http.ResponseWriter, ticker string, err error) {
	if errors.Is(err, collector.ErrNoData) {
		writeError(w, http.StatusNotFound, "no data found for ticker: "+ticker)
		return
	}
	s.logger.WithError(err).WithField("symbol", ticker).Warn("analysis failed")
	writeError(w, http.StatusBadGateway, "failed to fetch market data")
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	a, err := s.analyze(r, ticker, r.URL.Query().Get("refresh") == "true")
	if err != nil {
		s.writeAnalyzeError(w, ticker, err)
		return
	}
	writeJSON(w, http.StatusOK, a.Summarize())
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.recorder.List(r.Context(), strings.ToUpper(r.URL.Query().Get("symbol")))
	if err != nil {
		s.logger.WithError(err).Error("list analyses")
		writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type saveRequest struct {
	Symbol string `json:"symbol"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	a, err := s.analyze(r, ticker, true)
	if err != nil {
		s.writeAnalyzeError(w, ticker, err)
		return
	}
	saved := *a
	saved.ID = ""
	if _, err := s.recorder.Save(r.Context(), &saved); err != nil {
		s.logger.WithError(err).Error("save analysis")
		writeError(w, http.StatusInternalServerError, "failed to save analysis")
		return
	}
	writeJSON(w, http.StatusCreated, saved.Summarize())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	summary, err := s.recorder.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, recorder.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("get analysis")
		writeError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.recorder.Delete(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, recorder.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("delete analysis")
		writeError(w, http.StatusInternalServerError, "failed to delete analysis")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
