package reportserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yss-community/strategyharness/internal/reportstore"
)

var log = logrus.WithField("component", "reportserver")

// Server exposes stored harness runs over HTTP (read-only).
type Server struct {
	store *reportstore.Store
}

// New creates a report server backed by the given run store.
func New(store *reportstore.Store) *Server {
	return &Server{store: store}
}

// Router builds the gin handler.
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api")
	api.GET("/runs", s.handleRunsList)
	api.GET("/runs/latest", s.handleRunLatest)
	api.GET("/runs/:runID", s.handleRunGet)

	return r
}

func (s *Server) handleRunsList(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		log.Errorf("list runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list runs failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleRunGet(c *gin.Context) {
	report, err := s.store.GetRun(c.Request.Context(), c.Param("runID"))
	if err == reportstore.ErrRunNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		log.Errorf("get run: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get run failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleRunLatest(c *gin.Context) {
	report, err := s.store.LatestRun(c.Request.Context())
	if err == reportstore.ErrRunNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "no runs recorded"})
		return
	}
	if err != nil {
		log.Errorf("latest run: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "latest run failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}
