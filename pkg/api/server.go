// Package api exposes the solver over HTTP.
//
// Endpoints:
//
//	POST /v1/optimize  - k-best optimisation over factor tables
//	POST /v1/sample    - Boltzmann sampling with optional marginals
//	GET  /v1/runs      - list archived sampling runs
//	GET  /v1/runs/{id} - fetch one archived sampling run
//	GET  /healthz      - liveness probe
//
// Requests carry the problem as JSON table specs. When no elimination
// order is supplied, the server computes one with the greedy heuristic
// under the request's complexity budget. Sampling runs are archived in
// the configured store under their run IDs.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	charmlog "github.com/charmbracelet/log"

	ferrors "github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/model"
	"github.com/matzehuels/factortree/pkg/order"
	"github.com/matzehuels/factortree/pkg/solver"
	"github.com/matzehuels/factortree/pkg/store"
)

// Server handles solver HTTP requests.
type Server struct {
	store  store.Store
	logger *charmlog.Logger
}

// NewServer creates a server. A nil store falls back to an in-memory
// store, so runs are still archived for the server's lifetime; a nil
// logger uses the default.
func NewServer(s store.Store, logger *charmlog.Logger) *Server {
	if s == nil {
		s = store.NewMemoryStore()
	}
	if logger == nil {
		logger = charmlog.Default()
	}
	return &Server{store: s, logger: logger}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Post("/sample", s.handleSample)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

// problemRequest is the shared request envelope.
type problemRequest struct {
	Tables         []model.TableSpec `json:"tables"`
	VarOrder       []int             `json:"varOrder"`
	MaxComplexity  float64           `json:"maxComplexity"`
	InitState      []int             `json:"initState"`
	MinVars        int               `json:"minVars"`
	Heuristic      string            `json:"heuristic"`
	SelectionScale float64           `json:"selectionScale"`
	Seed           *int64            `json:"seed"`
}

type optimizeRequest struct {
	problemRequest
	MaxSolutions int  `json:"maxSolutions"`
	Maximize     bool `json:"maximize"`
}

type optimizeResponse struct {
	Energies []float64 `json:"energies"`
	States   [][]int   `json:"states,omitempty"`
	VarOrder []int     `json:"varOrder"`
}

type sampleRequest struct {
	problemRequest
	NumSamples int  `json:"numSamples"`
	Marginals  bool `json:"marginals"`
}

type sampleResponse struct {
	RunID     string            `json:"runId"`
	LogZ      float64           `json:"logZ"`
	Samples   [][]int           `json:"samples,omitempty"`
	Marginals []solver.Marginal `json:"marginals,omitempty"`
	VarOrder  []int             `json:"varOrder"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ferrors.New(ferrors.ErrCodeInvalidArg, "malformed request: %v", err))
		return
	}

	varOrder, err := s.resolveOrder(r, req.problemRequest)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	result, err := solver.Optimize(r.Context(), req.Tables, solver.OptimizeOptions{
		VarOrder:      varOrder,
		MaxComplexity: req.MaxComplexity,
		MaxSolutions:  req.MaxSolutions,
		InitState:     req.InitState,
		MinVars:       req.MinVars,
		Maximize:      req.Maximize,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, optimizeResponse{
		Energies: result.Energies,
		States:   result.States,
		VarOrder: varOrder,
	})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ferrors.New(ferrors.ErrCodeInvalidArg, "malformed request: %v", err))
		return
	}

	varOrder, err := s.resolveOrder(r, req.problemRequest)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	seed := int64(-1)
	if req.Seed != nil {
		seed = *req.Seed
	}
	result, err := solver.Sample(r.Context(), req.Tables, solver.SampleOptions{
		VarOrder:      varOrder,
		MaxComplexity: req.MaxComplexity,
		NumSamples:    req.NumSamples,
		InitState:     req.InitState,
		MinVars:       req.MinVars,
		Seed:          seed,
		Marginals:     req.Marginals,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	run := store.Run{
		ID:         result.RunID,
		CreatedAt:  time.Now().UTC(),
		NumVars:    numVars(req.Tables, req.MinVars),
		NumSamples: len(result.Samples),
		LogZ:       result.LogZ,
		Samples:    result.Samples,
		Marginals:  result.Marginals,
	}
	if err := s.store.Put(r.Context(), run); err != nil {
		s.logger.Warn("archiving run failed", "run", run.ID, "err", err)
	}

	writeJSON(w, http.StatusOK, sampleResponse{
		RunID:     result.RunID,
		LogZ:      result.LogZ,
		Samples:   result.Samples,
		Marginals: result.Marginals,
		VarOrder:  varOrder,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.List(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	// Strip bulky sample data from listings.
	for i := range runs {
		runs[i].Samples = nil
		runs[i].Marginals = nil
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// resolveOrder returns the request's elimination order, computing a
// greedy one when absent.
func (s *Server) resolveOrder(r *http.Request, req problemRequest) ([]int, error) {
	if req.VarOrder != nil {
		return req.VarOrder, nil
	}
	heuristic := order.MinFill
	if req.Heuristic != "" {
		var err error
		heuristic, err = order.ParseHeuristic(req.Heuristic)
		if err != nil {
			return nil, err
		}
	}
	scale := req.SelectionScale
	if scale == 0 {
		scale = 1
	}
	seed := int64(-1)
	if req.Seed != nil {
		seed = *req.Seed
	}
	return solver.GreedyOrder(r.Context(), req.Tables, solver.OrderOptions{
		MaxComplexity:  req.MaxComplexity,
		Heuristic:      heuristic,
		SelectionScale: scale,
		MinVars:        req.MinVars,
		Seed:           seed,
	})
}

func numVars(specs []model.TableSpec, minVars int) int {
	n := minVars
	for _, s := range specs {
		for _, v := range s.Scope {
			if v+1 > n {
				n = v + 1
			}
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Code:    string(ferrors.GetCode(err)),
		Message: ferrors.UserMessage(err),
	})
}

// statusFor maps engine error codes to HTTP statuses.
func statusFor(err error) int {
	switch ferrors.GetCode(err) {
	case ferrors.ErrCodeInvalidArg, ferrors.ErrCodeLength, ferrors.ErrCodeComplexityExceeded:
		return http.StatusBadRequest
	case ferrors.ErrCodeOperationUnavailable:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
