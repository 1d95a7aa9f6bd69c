package store

import (
	"context"

	"github.com/tnicklin/actuator_loglevels/models"
)

// Config holds history store configuration.
type Config struct {
	// Path of the sqlite file. Empty disables history in the handler.
	Path string `yaml:"path"`
}

// Store keeps a history of transitions.
type Store interface {
	Open(ctx context.Context) error
	Close() error

	RecordTransition(ctx context.Context, rec models.TransitionRecord) error
	GetTransition(ctx context.Context, id string) (*models.TransitionRecord, error)
	ListTransitions(ctx context.Context, limit int) ([]models.TransitionRecord, error)
}
