// Package server exposes the simulator as a small JSON API: the form values
// of a what-if run go in, sampled rows and their formatted report come out.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rustyeddy/cfdsim/config"
	"github.com/rustyeddy/cfdsim/id"
	"github.com/rustyeddy/cfdsim/journal"
	"github.com/rustyeddy/cfdsim/report"
	"github.com/rustyeddy/cfdsim/sim"
)

// SimulateRequest carries raw form input; every field is a string so that
// blank and partial rule rows reach rule parsing unchanged.
type SimulateRequest struct {
	Parameters sim.RawParameters `json:"parameters"`
	Rules      []sim.RawRule     `json:"rules"`
	RuleMode   string            `json:"rule_mode,omitempty"`
}

// SimulateResponse is returned for a successful run.
type SimulateResponse struct {
	RunID  string        `json:"run_id"`
	Result sim.ResultSet `json:"result"`
	Report report.Report `json:"report"`
}

// DefaultsResponse pre-fills a form.
type DefaultsResponse struct {
	Parameters sim.RawParameters `json:"parameters"`
	Rules      []sim.RawRule     `json:"rules"`
	RuleMode   string            `json:"rule_mode"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	cfg    *config.Config
	log    *zap.Logger
	format *report.Formatter
	router *gin.Engine

	mu      sync.Mutex // serializes journal writes
	journal journal.Journal
}

// New builds a Server. A nil journal discards runs.
func New(cfg *config.Config, j journal.Journal, log *zap.Logger) *Server {
	if j == nil {
		j = journal.Discard{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		log:     log,
		format:  report.Japanese(),
		journal: j,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())
	r.GET("/healthz", s.handleHealth)
	api := r.Group("/api")
	api.GET("/defaults", s.handleDefaults)
	api.POST("/simulate", s.handleSimulate)
	s.router = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDefaults(c *gin.Context) {
	sc := s.cfg.Simulation
	c.JSON(http.StatusOK, DefaultsResponse{
		Parameters: sim.RawParameters{
			StartPrice:      formatFloat(sc.StartPrice),
			AddInterval:     formatFloat(sc.AddInterval),
			DisplayInterval: formatFloat(sc.DisplayInterval),
			Direction:       sc.Direction,
			Sampling:        sc.Sampling,
		},
		Rules:    s.cfg.RawRules(),
		RuleMode: sim.ParseModeFromString(sc.RuleMode).String(),
	})
}

func (s *Server) handleSimulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body: " + err.Error()})
		return
	}

	mode := sim.ParseModeFromString(s.cfg.Simulation.RuleMode)
	if req.RuleMode != "" {
		mode = sim.ParseModeFromString(req.RuleMode)
	}

	ctx := c.Request.Context()
	p, err := sim.ParseParameters(req.Parameters)
	if err != nil {
		s.fail(c, err)
		return
	}
	p.MaxSteps = s.cfg.Simulation.MaxSteps

	rules, err := sim.ParseRules(req.Rules, mode)
	if err != nil {
		s.fail(c, err)
		return
	}

	rs, err := sim.Simulate(ctx, p, rules, sim.WithLogger(s.log))
	if err != nil {
		s.fail(c, err)
		return
	}

	created := time.Now()
	runID := id.NewRun(created)
	run, rows := journal.NewRun(runID, created, p, rules, rs)

	s.mu.Lock()
	err = s.journal.RecordRun(ctx, run, rows)
	s.mu.Unlock()
	if err != nil {
		s.log.Error("record run", zap.String("run_id", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not record run"})
		return
	}

	c.JSON(http.StatusOK, SimulateResponse{
		RunID:  runID,
		Result: rs,
		Report: report.Build(rs, s.format),
	})
}

// fail maps validation errors to 400 with their message and anything else
// to 500.
func (s *Server) fail(c *gin.Context, err error) {
	var ve *sim.ValidationError
	if errors.As(err, &ve) {
		s.log.Debug("rejected simulation", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.log.Error("simulation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
