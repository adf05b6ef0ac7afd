package http

// registerV1Routes sets up the v1 API.
// Groups: /api/v1/core (matches), /api/v1/runs (pipeline runs)
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware())
	if s.cfg.BearerToken != "" {
		v1.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}

	core := v1.Group("/core")
	{
		core.GET("/matches", s.handleV1ListMatches)
		core.GET("/matches/:id", s.handleV1GetMatch)
	}

	runs := v1.Group("/runs")
	{
		runs.GET("", s.handleV1ListRuns)
		runs.GET("/latest", s.handleV1LatestRun)
	}
}
