package handlers

import (
	"github.com/user/tripagent/internal/config"
	"github.com/user/tripagent/internal/logging"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	Config *config.Config
	Logger *logging.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(cfg *config.Config, logger *logging.Logger) *BaseHandler {
	return &BaseHandler{
		Config: cfg,
		Logger: logger,
	}
}
