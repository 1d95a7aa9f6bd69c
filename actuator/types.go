package actuator

import (
	"context"

	"github.com/tnicklin/actuator_loglevels/models"
)

// Client talks to the management endpoints of the remote service.
type Client interface {
	// SetLoggerLevel returns the HTTP status of a completed request. Only
	// transport failures are returned as errors.
	SetLoggerLevel(ctx context.Context, creds models.Credentials, name, level string) (int, error)
	LoggerLevel(ctx context.Context, creds models.Credentials, name string) (LoggerLevels, error)
}

// LoggerLevels is the body returned by GET /actuator/loggers/{name}.
type LoggerLevels struct {
	ConfiguredLevel string `json:"configuredLevel"`
	EffectiveLevel  string `json:"effectiveLevel"`
}

type setLevelRequest struct {
	ConfiguredLevel string `json:"configuredLevel"`
}
