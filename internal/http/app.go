package http

import (
	"context"

	"github.com/mafiaidola/leads-manager-sub000/platform/config"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

// HealthChecker reports readiness of a dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is everything the router needs to assemble the HTTP surface.
type App struct {
	Config  *config.Config
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}
