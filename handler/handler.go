// Package handler adapts notification events to a log-level transition.
//
// The event is only a wake-up signal. Each invocation builds its own
// clients, runs the transition, then records and announces the result.
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/tnicklin/actuator_loglevels/clock"
	"github.com/tnicklin/actuator_loglevels/config"
	"github.com/tnicklin/actuator_loglevels/discord"
	"github.com/tnicklin/actuator_loglevels/logger"
	"github.com/tnicklin/actuator_loglevels/models"
	"github.com/tnicklin/actuator_loglevels/store"
	"github.com/tnicklin/actuator_loglevels/transition"
)

type Handler struct {
	factory    Factory
	transition config.TransitionConfig
	store      store.Store
	notifier   discord.Notifier
	logger     logger.Logger
	clock      clock.Clock
	newID      func() string
}

type Params struct {
	Factory    Factory
	Transition config.TransitionConfig
	// Store is opened and closed around each invocation. Nil disables history.
	Store    store.Store
	Notifier discord.Notifier
	Logger   logger.Logger
	Clock    clock.Clock
	NewID    func() string
}

func New(p Params) (*Handler, error) {
	if p.Factory == nil {
		return nil, errors.New("handler: factory is required")
	}

	log := p.Logger
	if log == nil {
		log = logger.NewNop()
	}
	notifier := p.Notifier
	if notifier == nil {
		notifier = discord.Nop{}
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.System()
	}
	newID := p.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}

	return &Handler{
		factory:    p.Factory,
		transition: p.Transition,
		store:      p.Store,
		notifier:   notifier,
		logger:     log,
		clock:      clk,
		newID:      newID,
	}, nil
}

// Handle runs one transition for an SNS delivery. The transition error is
// returned unchanged so the runtime reports the invocation as failed.
func (h *Handler) Handle(ctx context.Context, event events.SNSEvent) error {
	id := h.invocationID(ctx)
	trigger := triggerOf(event)
	log := h.logger.With("invocation", id)

	messageIDs := make([]string, 0, len(event.Records))
	for _, r := range event.Records {
		messageIDs = append(messageIDs, r.SNS.MessageID)
	}
	log.InfoW("received notification",
		"records", len(event.Records),
		"message_ids", messageIDs,
		"trigger", trigger,
	)

	rec := models.TransitionRecord{
		ID:        id,
		Trigger:   trigger,
		Parameter: h.transition.ParameterName,
		StartedAt: h.clock.Now(),
	}

	report, err := h.run(ctx, log)
	rec.FinishedAt = h.clock.Now()
	rec.NoOp = report.NoOp
	rec.Outcomes = report.Outcomes
	if err != nil {
		rec.Error = err.Error()
		log.ErrorW("log level transition failed", "error", err)
	} else {
		log.InfoW("log level transition finished",
			"no_op", report.NoOp,
			"applied", len(report.Outcomes),
			"rejected", len(report.Rejections()),
		)
	}

	h.record(ctx, log, rec)
	if !rec.NoOp || err != nil {
		if nerr := h.notifier.Notify(ctx, rec); nerr != nil {
			log.WarnW("notify failed", "error", nerr)
		}
	}

	return err
}

func (h *Handler) run(ctx context.Context, log logger.Logger) (transition.Report, error) {
	collab, err := h.factory.New(ctx)
	if err != nil {
		return transition.Report{}, fmt.Errorf("%w: %w", transition.ErrConfiguration, err)
	}

	tr, err := transition.New(transition.Params{
		Parameters:    collab.Parameters,
		Secrets:       collab.Secrets,
		Actuator:      collab.Actuator,
		Logger:        log,
		ParameterName: h.transition.ParameterName,
		SecretID:      h.transition.SecretID,
		StrictStatus:  h.transition.StrictStatus,
	})
	if err != nil {
		return transition.Report{}, fmt.Errorf("%w: %w", transition.ErrConfiguration, err)
	}

	return tr.Run(ctx)
}

func (h *Handler) record(ctx context.Context, log logger.Logger, rec models.TransitionRecord) {
	if h.store == nil {
		return
	}
	if err := h.store.Open(ctx); err != nil {
		log.WarnW("open history store", "error", err)
		return
	}
	defer func() {
		if err := h.store.Close(); err != nil {
			log.WarnW("close history store", "error", err)
		}
	}()

	if err := h.store.RecordTransition(ctx, rec); err != nil {
		log.WarnW("record transition", "error", err)
	}
}

func (h *Handler) invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return h.newID()
}

func triggerOf(event events.SNSEvent) string {
	for _, r := range event.Records {
		if r.SNS.TopicArn != "" {
			return r.SNS.TopicArn
		}
		if r.EventSubscriptionArn != "" {
			return r.EventSubscriptionArn
		}
	}
	return ""
}
