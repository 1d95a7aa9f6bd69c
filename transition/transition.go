// Package transition applies the logger levels configured for an alarm
// state to the remote service.
//
// One Run reads the directive string from the parameter store, reads the
// credentials from the secret store and then POSTs each directive to
// /actuator/loggers/{name}. Calls are made one at a time in the order the
// directives appear. A transport failure stops the run; a non-2xx status is
// recorded and the run continues.
package transition

import (
	"context"
	"errors"

	"github.com/tnicklin/actuator_loglevels/actuator"
	"github.com/tnicklin/actuator_loglevels/directives"
	"github.com/tnicklin/actuator_loglevels/logger"
	"github.com/tnicklin/actuator_loglevels/models"
	"github.com/tnicklin/actuator_loglevels/parameters"
	"github.com/tnicklin/actuator_loglevels/secrets"
)

// Report describes what a Run did.
type Report struct {
	Parameter string
	// NoOp is set when the parameter was absent or held no usable directive.
	NoOp       bool
	Directives []models.Directive
	Skipped    []directives.Skipped
	// Outcomes has one entry per attempted directive, in order.
	Outcomes []models.Outcome
}

// Rejections returns the attempted directives that came back non-2xx.
func (r Report) Rejections() []*RemoteRejection {
	var out []*RemoteRejection
	for _, o := range r.Outcomes {
		if o.Err == "" && !o.OK() {
			out = append(out, &RemoteRejection{Directive: o.Directive, StatusCode: o.StatusCode})
		}
	}
	return out
}

// Transitioner runs one transition. Build a new one per invocation.
type Transitioner struct {
	parameters    parameters.Store
	secrets       secrets.Store
	actuator      actuator.Client
	logger        logger.Logger
	parameterName string
	secretID      string
	strictStatus  bool
}

type Params struct {
	Parameters    parameters.Store
	Secrets       secrets.Store
	Actuator      actuator.Client
	Logger        logger.Logger
	ParameterName string
	SecretID      string
	// StrictStatus turns non-2xx responses into a RejectionError once every
	// directive has been attempted.
	StrictStatus bool
}

func New(p Params) (*Transitioner, error) {
	if p.Parameters == nil {
		return nil, errors.New("transition: parameter store is required")
	}
	if p.Secrets == nil {
		return nil, errors.New("transition: secret store is required")
	}
	if p.Actuator == nil {
		return nil, errors.New("transition: actuator client is required")
	}

	log := p.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Transitioner{
		parameters:    p.Parameters,
		secrets:       p.Secrets,
		actuator:      p.Actuator,
		logger:        log,
		parameterName: p.ParameterName,
		secretID:      p.SecretID,
		strictStatus:  p.StrictStatus,
	}, nil
}

// Run performs the transition. The returned Report is valid even when an
// error is returned and holds the outcomes of the calls made so far.
func (t *Transitioner) Run(ctx context.Context) (Report, error) {
	report := Report{Parameter: t.parameterName}

	if t.parameterName == "" {
		return report, configurationError("parameter name is not set", nil)
	}

	value, found, err := t.parameters.Get(ctx, t.parameterName)
	if err != nil {
		return report, configurationError("read parameter "+t.parameterName, err)
	}
	t.logger.InfoW("fetched logger level parameter",
		"parameter", t.parameterName,
		"found", found,
		"value", value,
	)
	if !found {
		report.NoOp = true
		return report, nil
	}

	parsed := directives.Parse(value)
	report.Directives = parsed.Directives
	report.Skipped = parsed.Skipped
	for _, s := range parsed.Skipped {
		t.logger.WarnW("skipping malformed directive",
			"parameter", t.parameterName,
			"position", s.Position,
			"segment", s.Segment,
			"reason", s.Reason,
		)
	}
	t.logger.InfoW("parsed logger levels", "directives", parsed.Directives)

	if parsed.Empty() {
		report.NoOp = true
		return report, nil
	}

	if t.secretID == "" {
		return report, configurationError("secret id is not set", nil)
	}
	creds, err := t.secrets.Credentials(ctx, t.secretID)
	if err != nil {
		return report, configurationError("read secret "+t.secretID, err)
	}

	var rejections []*RemoteRejection
	for _, d := range parsed.Directives {
		status, err := t.actuator.SetLoggerLevel(ctx, creds, d.Name, d.Level)
		if err != nil {
			report.Outcomes = append(report.Outcomes, models.Outcome{Directive: d, Err: err.Error()})
			t.logger.ErrorW("logger level update failed",
				"logger", d.Name,
				"level", d.Level,
				"error", err,
			)
			return report, &TransportError{Directive: d, Err: err}
		}

		outcome := models.Outcome{Directive: d, StatusCode: status}
		report.Outcomes = append(report.Outcomes, outcome)

		if !outcome.OK() {
			rejections = append(rejections, &RemoteRejection{Directive: d, StatusCode: status})
			t.logger.WarnW("logger level update rejected",
				"logger", d.Name,
				"level", d.Level,
				"status", status,
			)
			continue
		}
		t.logger.InfoW("logger level updated",
			"logger", d.Name,
			"level", d.Level,
			"status", status,
		)
	}

	if t.strictStatus && len(rejections) > 0 {
		return report, newRejectionError(rejections)
	}
	return report, nil
}
