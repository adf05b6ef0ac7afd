package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/matchday-pipeline/services/api/db"
)

// handleV1ListMatches returns a paginated, filtered list of matches
// GET /api/v1/core/matches?competition=PL&season=2023&status=FINISHED&team=arsenal&start=...&end=...&page=1&limit=50
func (s *Server) handleV1ListMatches(c *gin.Context) {
	page, limit, ok := s.pagination(c)
	if !ok {
		return
	}

	q := db.MatchQuery{
		Competition: c.Query("competition"),
		Status:      c.Query("status"),
		Team:        c.Query("team"),
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}

	if seasonStr := c.Query("season"); seasonStr != "" {
		season, err := strconv.Atoi(seasonStr)
		if err != nil || season <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid season"})
			return
		}
		q.Season = &season
	}

	if start := c.Query("start"); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start time format, expected RFC3339"})
			return
		}
		tt := t.UTC()
		q.Since = &tt
	}
	if end := c.Query("end"); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end time format, expected RFC3339"})
			return
		}
		tt := t.UTC()
		q.Until = &tt
	}
	if q.Since != nil && q.Until != nil && q.Since.After(*q.Until) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must not be after end"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	result, err := s.store.ListMatches(ctx, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       result.Matches,
		"pagination": paginationMeta(page, limit, result.TotalCount),
	})
}

// handleV1GetMatch returns a single match
// GET /api/v1/core/matches/:id
func (s *Server) handleV1GetMatch(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	match, err := s.store.GetMatch(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if match == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": match,
	})
}

// pagination reads page and limit. It writes a 400 and returns false on
// malformed values.
func (s *Server) pagination(c *gin.Context) (page, limit int, ok bool) {
	page = 1
	if p := c.Query("page"); p != "" {
		val, err := strconv.Atoi(p)
		if err != nil || val <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return 0, 0, false
		}
		page = val
	}

	limit = s.cfg.DefaultLimit
	if l := c.Query("limit"); l != "" {
		val, err := strconv.Atoi(l)
		if err != nil || val <= 0 || val > s.cfg.MaxLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit, expected 1.." + strconv.Itoa(s.cfg.MaxLimit)})
			return 0, 0, false
		}
		limit = val
	}
	return page, limit, true
}

func paginationMeta(page, limit, total int) gin.H {
	return gin.H{
		"page":        page,
		"limit":       limit,
		"total_count": total,
		"total_pages": (total + limit - 1) / limit,
	}
}
