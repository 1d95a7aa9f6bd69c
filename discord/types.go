package discord

import (
	"context"

	"github.com/tnicklin/actuator_loglevels/models"
)

// Notifier announces a finished transition.
type Notifier interface {
	Notify(ctx context.Context, rec models.TransitionRecord) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, models.TransitionRecord) error { return nil }
