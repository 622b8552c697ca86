package server

import (
	"orderservice/internal/handler"
	"orderservice/internal/middleware"

	echomw "github.com/labstack/echo/v4/middleware"
)

// bodyの上限
const maxBodySize = "1M"

// POST/PUT の /orders 系だけJSON必須・サイズ上限つき
func (s *Server) registerRoutes(orderH *handler.OrderHandler, healthH *handler.HealthHandler) {
	healthH.RegisterRoutes(s.e)
	orderH.RegisterRoutes(s.e.Group("/orders"),
		middleware.RequireJSON(),
		echomw.BodyLimit(maxBodySize),
	)
}
