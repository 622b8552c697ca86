package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const pingTimeout = 2 * time.Second

// DBの生存確認
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	name    string
	version string
}

func NewHealthHandler(db Pinger, name, version string) *HealthHandler {
	return &HealthHandler{db: db, name: name, version: version}
}

type HealthResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type IndexResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Paths   string `json:"paths"`
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.index)
	e.GET("/healthcheck", h.health)
}

func (h *HealthHandler) index(c echo.Context) error {
	return c.JSON(http.StatusOK, IndexResponse{
		Name:    h.name,
		Version: h.version,
		Paths:   "/orders",
	})
}

func (h *HealthHandler) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:  http.StatusServiceUnavailable,
			Message: "Unhealthy",
		})
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  http.StatusOK,
		Message: "Healthy",
	})
}
