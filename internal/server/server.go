// Package server exposes the deck calculator as a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/piwi3910/DeckCalc/internal/engine"
	"github.com/piwi3910/DeckCalc/internal/model"
)

// maxBodyBytes caps request bodies; plans are small.
const maxBodyBytes = 1 << 20

// Server answers estimate requests using the defaults from an AppConfig.
type Server struct {
	cfg model.AppConfig
}

func New(cfg model.AppConfig) *Server {
	return &Server{cfg: cfg}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Get("/api/defaults", s.handleDefaults)
	r.Post("/api/quantities", s.handleQuantities)
	r.Post("/api/stairs", s.handleStairs)
	r.Post("/api/compare", s.handleCompare)
	return r
}

// ListenAndServe serves the API on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("[SERVER] listening on %s", addr)
	return http.ListenAndServe(addr, s.Routes())
}

type errorResponse struct {
	Error string `json:"error"`
}

// comparisonView is one row of a compare response.
type comparisonView struct {
	Name         string            `json:"name"`
	DirectionDeg float64           `json:"direction_deg"`
	Mode         model.Mode        `json:"mode"`
	Boards       int               `json:"boards"`
	LossRate     float64           `json:"loss_rate"`
	WasteM       float64           `json:"waste_m"`
	Quantities   *model.Quantities `json:"quantities,omitempty"`
	Error        string            `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.EstimateRequest{
		Product:   &s.cfg.DefaultProduct,
		Ruleset:   &s.cfg.DefaultRuleset,
		Fastening: s.cfg.DefaultFastening,
		Plan: model.Plan{
			Unit:         model.UnitMM,
			BoardWidthMm: s.cfg.DefaultBoardWidthMm,
		},
	})
}

func (s *Server) handleQuantities(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	plan, product, rs, fastening := s.cfg.Resolve(req)

	q, err := engine.CalculateQuantities(plan, product, rs, fastening)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(q.Warnings) > 0 {
		log.Printf("[SERVER] %s: estimate for %q returned %d warnings", r.URL.Path, req.Name, len(q.Warnings))
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleStairs(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	st := engine.CalculateStairs(req.Plan)
	if st == nil {
		st = &model.StairResult{Items: []model.StairItem{}}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	plan, product, rs, fastening := s.cfg.Resolve(req)

	dirs := req.Directions
	if len(dirs) == 0 {
		dirs = s.cfg.DefaultDirectionsDeg
	}
	scenarios := engine.BuildDefaultScenarios(plan, rs, dirs...)
	results := engine.CompareScenarios(scenarios, plan, product, fastening)

	views := make([]comparisonView, 0, len(results))
	for _, res := range results {
		v := comparisonView{
			Name:         res.Scenario.Name,
			DirectionDeg: res.Scenario.DirectionDeg,
			Mode:         res.Scenario.Ruleset.Mode,
			Boards:       res.Boards,
			LossRate:     res.LossRate,
			WasteM:       res.WasteM,
		}
		if res.Err != nil {
			v.Error = res.Err.Error()
		} else {
			q := res.Quantities
			v.Quantities = &q
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// decode reads the request body. It writes a 400 response and returns
// false when the body is not a valid request.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (model.EstimateRequest, bool) {
	var req model.EstimateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		log.Printf("[SERVER] %s: bad request body: %v", r.URL.Path, err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return req, false
	}
	return req, true
}

// fail maps engine errors onto status codes: input problems are the
// caller's to fix, anything else is ours.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, engine.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	log.Printf("[SERVER] %s: %v", r.URL.Path, err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[SERVER] failed to write response: %v", err)
	}
}
