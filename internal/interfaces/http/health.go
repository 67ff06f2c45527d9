package http

import (
	"github.com/labstack/echo/v4"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Router    string    `json:"router"`
	Backend   string    `json:"backend"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) HealthHandler(c echo.Context) error {
	response := HealthResponse{
		Status:    "OK",
		Router:    "running",
		Backend:   "ok",
		Timestamp: s.now().UTC(),
	}
	status := http.StatusOK

	if !s.routerIsRunning() {
		response.Status = "DEGRADED"
		response.Router = "not running"
		status = http.StatusServiceUnavailable
	}
	if err := s.health(c.Request().Context()); err != nil {
		response.Status = "DEGRADED"
		response.Backend = err.Error()
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, response)
}
