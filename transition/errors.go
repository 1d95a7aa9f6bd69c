package transition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tnicklin/actuator_loglevels/models"
	"go.uber.org/multierr"
)

// ErrConfiguration marks a missing or malformed parameter or secret. It is
// always detected before any remote call is made.
var ErrConfiguration = errors.New("configuration error")

// TransportError is returned when a remote call could not complete. Later
// directives are not attempted.
type TransportError struct {
	Directive models.Directive
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("apply %s: %v", e.Directive, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteRejection is a completed call that came back with a non-2xx status.
type RemoteRejection struct {
	Directive  models.Directive
	StatusCode int
}

func (e *RemoteRejection) Error() string {
	return fmt.Sprintf("apply %s: status %d", e.Directive, e.StatusCode)
}

// RejectionError aggregates every RemoteRejection of one run. It is only
// returned in strict mode.
type RejectionError struct {
	err error
}

func newRejectionError(rejections []*RemoteRejection) *RejectionError {
	var err error
	for _, r := range rejections {
		err = multierr.Append(err, r)
	}
	return &RejectionError{err: err}
}

func (e *RejectionError) Error() string {
	errs := multierr.Errors(e.err)
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d directive(s) rejected: %s", len(errs), strings.Join(msgs, "; "))
}

// Rejections returns the individual rejections in directive order.
func (e *RejectionError) Rejections() []*RemoteRejection {
	var out []*RemoteRejection
	for _, err := range multierr.Errors(e.err) {
		var r *RemoteRejection
		if errors.As(err, &r) {
			out = append(out, r)
		}
	}
	return out
}

func (e *RejectionError) Unwrap() []error {
	return multierr.Errors(e.err)
}

func configurationError(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrConfiguration, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrConfiguration, msg, cause)
}
