package admin

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/sim"
	"planeidler-sim/internal/telemetry"
	"planeidler-sim/internal/upgrades"
)

const defaultLogLines = 50

// Simulation is the read and control surface the admin API needs.
type Simulation interface {
	Snapshot() telemetry.StateRow
	Stands() []sim.StandView
	Runway() sim.RunwayView
	Flights() []sim.FlightView
	RecentLog(n int) []string
	SetTimeScale(value float64) float64
	TimeScale() float64
	Catalog() *catalog.Catalog
}

// Upgrades sells and lists upgrades.
type Upgrades interface {
	List() []upgrades.Status
	Constructions() []upgrades.Construction
	Purchase(id string) error
}

type Server struct {
	Sim      Simulation
	Upgrades Upgrades
	tpl      *template.Template
	router   chi.Router
}

//go:embed templates/index.html
var content embed.FS

func NewServer(s Simulation, u Upgrades) *Server {
	tpl := template.Must(template.New("index.html").Funcs(template.FuncMap{
		"money": func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) },
	}).ParseFS(content, "templates/index.html"))
	srv := &Server{Sim: s, Upgrades: u, tpl: tpl}
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/state", s.handleState)
	r.Get("/stands", s.handleStands)
	r.Get("/runway", s.handleRunway)
	r.Get("/flights", s.handleFlights)
	r.Get("/logs", s.handleLogs)
	r.Get("/catalog", s.handleCatalog)
	r.Get("/time-scale", s.handleTimeScale)
	r.Post("/time-scale", s.handleSetTimeScale)
	r.Route("/upgrades", func(r chi.Router) {
		r.Get("/", s.handleUpgrades)
		r.Get("/construction", s.handleConstruction)
		r.Post("/{id}/purchase", s.handlePurchase)
	})
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		State    telemetry.StateRow
		Runway   sim.RunwayView
		Stands   []sim.StandView
		Upgrades []upgrades.Status
		Logs     []string
	}{
		State:    s.Sim.Snapshot(),
		Runway:   s.Sim.Runway(),
		Stands:   s.Sim.Stands(),
		Upgrades: s.Upgrades.List(),
		Logs:     s.Sim.RecentLog(defaultLogLines),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Snapshot())
}

func (s *Server) handleStands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Stands())
}

func (s *Server) handleRunway(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Runway())
}

func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Flights())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	n := defaultLogLines
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("n must be a positive integer"))
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, s.Sim.RecentLog(n))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.Sim.Catalog()
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"aircraft": cat.Aircraft,
		"upgrades": cat.Upgrades,
	})
}

func (s *Server) handleTimeScale(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"time_scale": s.Sim.TimeScale()})
}

// handleSetTimeScale accepts ?value= or a JSON body {"value": x}.
func (s *Server) handleSetTimeScale(w http.ResponseWriter, r *http.Request) {
	var value float64
	if q := r.URL.Query().Get("value"); q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("value must be a number"))
			return
		}
		value = v
	} else {
		var body struct {
			Value *float64 `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Value == nil {
			writeError(w, http.StatusBadRequest, errors.New("missing value"))
			return
		}
		value = *body.Value
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		writeError(w, http.StatusBadRequest, errors.New("value must be finite"))
		return
	}
	applied := s.Sim.SetTimeScale(value)
	writeJSON(w, http.StatusOK, map[string]float64{"time_scale": applied})
}

func (s *Server) handleUpgrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Upgrades.List())
}

func (s *Server) handleConstruction(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Upgrades.Constructions())
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.Upgrades.Purchase(id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "purchased": true})
	case errors.Is(err, upgrades.ErrUnknownUpgrade):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, upgrades.ErrInsufficientFunds),
		errors.Is(err, upgrades.ErrMaxPurchases),
		errors.Is(err, upgrades.ErrPrerequisiteMissing),
		errors.Is(err, upgrades.ErrTierLocked):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
