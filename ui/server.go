// Package ui serves the interactive dashboard over the analysis artifacts.
// The server keeps one immutable dataset snapshot behind a RWMutex and
// swaps it atomically on reload, so handlers never lock for long.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"adpulse/internal"
	"adpulse/internal/config"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server is the dashboard web server.
type Server struct {
	router *gin.Engine
	cfg    *config.Config
	log    *internal.Logger

	mu   sync.RWMutex
	data *Dataset
}

// NewServer creates the dashboard server for a configuration.
func NewServer(cfg *config.Config, log *internal.Logger) *Server {
	gin.SetMode(cfg.Server.GinMode)
	return &Server{
		router: gin.Default(),
		cfg:    cfg,
		log:    log,
	}
}

// Initialize parses templates, wires routes, and loads the first snapshot.
func (s *Server) Initialize() error {
	tmpl := template.New("").Funcs(template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
		"pct":   func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
		"mult":  func(v float64) string { return fmt.Sprintf("%.2fx", v) },
		"num":   func(v float64) string { return fmt.Sprintf("%.0f", v) },
		"f2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"join":  strings.Join,
	})
	tmpl, err := tmpl.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	s.router.SetHTMLTemplate(tmpl)

	s.setupRoutes()

	if err := s.Reload(); err != nil {
		// the stage outputs may not exist yet; the dashboard still starts
		// and every page explains what to run
		s.log.Warn("initial data load failed: %v", err)
	}
	return nil
}

// Reload re-reads every interchange file and swaps the snapshot in.
func (s *Server) Reload() error {
	ds, err := loadDataset(s.cfg.Data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = ds
	s.mu.Unlock()
	s.log.Info("dashboard data reloaded: %d processed records, %d trend days",
		ds.Processed.Len(), len(ds.Daily))
	return nil
}

func (s *Server) snapshot() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleOverview)
	s.router.GET("/campaigns", s.handleCampaigns)
	s.router.GET("/devices", s.handleDevices)
	s.router.GET("/locations", s.handleLocations)
	s.router.GET("/trends", s.handleTrends)
	s.router.GET("/insights", s.handleInsights)
	s.router.GET("/explore", s.handleExplore)

	api := s.router.Group("/api")
	{
		api.GET("/summary", s.apiSummary)
		api.GET("/campaigns", s.apiCampaigns)
		api.GET("/devices", s.apiDevices)
		api.GET("/locations", s.apiLocations)
		api.GET("/trends", s.apiTrends)
		api.GET("/anomalies", s.apiAnomalies)
		api.GET("/filter", s.apiFilter)
		api.POST("/reload", s.apiReload)
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "loaded": s.snapshot() != nil})
	})
}

// Run starts the HTTP server on the configured port.
func (s *Server) Run() error {
	addr := ":" + s.cfg.Server.Port
	s.log.Info("dashboard listening on %s", addr)
	return s.router.Run(addr)
}
