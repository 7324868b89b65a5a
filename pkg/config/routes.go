package config

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the read-only settings route.
func RegisterRoutes(e *echo.Echo, cfg *Config) {
	h := &handler{configService: NewService(cfg)}

	e.GET("/config", h.retrieve)
}
