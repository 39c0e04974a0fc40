// Package server serves the interactive demand dashboard and its JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/config"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/geo"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/render"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/session"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/validation"
)

// Map image size in pixels.
const (
	MapWidth  = 900
	MapHeight = 520
)

// CookieName holds the session id.
const CookieName = "trdemand_session"

// Server is the dashboard HTTP server. The catalog and boundaries are shared
// read-only by every request; only the session store is mutable.
type Server struct {
	cfg        *config.Config
	log        *zap.Logger
	catalog    *dataset.Catalog
	boundaries *geo.Boundaries
	mapView    *render.MapView
	opts       analytics.Options
	report     *validation.Report
	sessions   *session.Store
	metrics    *Metrics
	page       *template.Template
}

// New creates a server over loaded data. report is the merged load and join
// report served at /api/report.
func New(cfg *config.Config, log *zap.Logger, c *dataset.Catalog, b *geo.Boundaries, report *validation.Report) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if report == nil {
		report = validation.NewReport()
	}
	if len(c.ScenarioIDs()) == 0 {
		return nil, errors.New("catalog has no scenarios")
	}
	scenario, err := dataset.ParseScenario(cfg.Display.DefaultScenario)
	if err != nil || !c.HasScenario(scenario) {
		scenario = c.ScenarioIDs()[0]
	}
	page, err := parsePage()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		log:        log,
		catalog:    c,
		boundaries: b,
		mapView:    render.NewMapView(b, MapWidth, MapHeight),
		opts:       analytics.OptionsFrom(cfg),
		report:     report,
		sessions:   session.NewStore(session.New(cfg.Display.DefaultProvince, scenario), cfg.Server.SessionTTL),
		metrics:    NewMetrics(),
		page:       page,
	}
	joinErrors := 0
	for _, res := range report.Filter(validation.LevelJoin) {
		if res.Severity == validation.SeverityError {
			joinErrors++
		}
	}
	s.metrics.SetJoinErrors(joinErrors)
	return s, nil
}

// Handler returns the routed handler with logging, recovery, compression
// and metrics applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)

	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/map.{format:svg|png}", s.handleMap).Methods("GET")
	r.HandleFunc("/charts/national.{format:svg|png}", s.handleNationalChart).Methods("GET")
	r.HandleFunc("/charts/province.{format:svg|png}", s.handleProvinceChart).Methods("GET")
	r.HandleFunc("/select/province", s.handleSelectProvince).Methods("POST")
	r.HandleFunc("/select/scenario", s.handleSelectScenario).Methods("POST")
	r.HandleFunc("/export.xlsx", s.handleExport).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scenarios", s.handleScenarios).Methods("GET")
	api.HandleFunc("/national", s.handleNational).Methods("GET")
	api.HandleFunc("/provinces", s.handleProvinces).Methods("GET")
	api.HandleFunc("/provinces/{name}", s.handleProvince).Methods("GET")
	api.HandleFunc("/map", s.handleMapData).Methods("GET")
	api.HandleFunc("/report", s.handleReport).Methods("GET")
	api.HandleFunc("/session", s.handleSession).Methods("GET")

	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	var h http.Handler = r
	h = handlers.CompressHandler(h)
	h = handlers.CustomLoggingHandler(io.Discard, h, s.logRequest)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(s.log)),
		handlers.PrintRecoveryStack(true),
	)(h)
	return h
}

func (s *Server) logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	fields := []zap.Field{
		zap.String("method", p.Request.Method),
		zap.String("path", p.URL.Path),
		zap.Int("status", p.StatusCode),
		zap.Int("size", p.Size),
		zap.Duration("duration", time.Since(p.TimeStamp)),
	}
	if c, err := p.Request.Cookie(CookieName); err == nil {
		fields = append(fields, zap.String("session", c.Value))
	}
	s.log.Info("request", fields...)
}

// Run serves on the configured address until ctx is cancelled, sweeping
// expired sessions in the background.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errc := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening",
			zap.String("addr", srv.Addr),
			zap.Int("provinces", len(s.boundaries.Features)),
			zap.Int("scenarios", len(s.catalog.ScenarioIDs())))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) sweep(ctx context.Context) {
	interval := time.Minute
	if ttl := s.cfg.Server.SessionTTL; ttl/4 > 0 && ttl/4 < interval {
		interval = ttl / 4
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.log.Debug("expired sessions removed", zap.Int("count", n))
			}
			s.metrics.SetSessions(s.sessions.Len())
		}
	}
}

// current returns the caller's state without starting a session, for
// routes that only read it.
func (s *Server) current(r *http.Request) session.State {
	return s.sessions.Peek(cookieValue(r))
}

// session returns the caller's state, issuing a cookie for new sessions.
func (s *Server) session(w http.ResponseWriter, r *http.Request) session.State {
	id, st := s.sessions.Get(cookieValue(r))
	s.setCookie(w, r, id)
	return st
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request, fn func(session.State) session.State) session.State {
	id, st := s.sessions.Update(cookieValue(r), fn)
	s.setCookie(w, r, id)
	return st
}

func (s *Server) setCookie(w http.ResponseWriter, r *http.Request, id string) {
	if id == cookieValue(r) {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.metrics.SetSessions(s.sessions.Len())
}

func cookieValue(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
