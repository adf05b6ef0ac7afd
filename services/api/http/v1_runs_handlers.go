package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleV1ListRuns returns recorded dataset runs, newest first
// GET /api/v1/runs?page=1&limit=50&dataset=pl_2023_finished
func (s *Server) handleV1ListRuns(c *gin.Context) {
	page, limit, ok := s.pagination(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	result, err := s.store.ListRuns(ctx, limit, (page-1)*limit, c.Query("dataset"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       result.Runs,
		"pagination": paginationMeta(page, limit, result.TotalCount),
	})
}

// handleV1LatestRun returns every dataset of the most recent pipeline run
// GET /api/v1/runs/latest
func (s *Server) handleV1LatestRun(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	runs, err := s.store.LatestRun(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(runs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pipeline runs recorded"})
		return
	}

	failed := 0
	for _, r := range runs {
		if !r.OK() {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
		"meta": gin.H{
			"run_id":       runs[0].RunID,
			"datasets":     len(runs),
			"failed":       failed,
			"generated_at": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
