package models

import (
	"fmt"
	"strings"
	"time"
)

// Directive is a single logger-name/desired-level pair.
type Directive struct {
	Name  string `json:"name" yaml:"name"`
	Level string `json:"configuredLevel" yaml:"level"`
}

func (d Directive) String() string {
	return d.Name + ":" + d.Level
}

// Credentials are the basic-auth credentials for the management endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// String keeps the password out of formatted output.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username:%s Password:%s}", c.Username, redact(c.Password))
}

func (c Credentials) GoString() string {
	return c.String()
}

func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.Username) != "" && c.Password != ""
}

func redact(in string) string {
	if in == "" {
		return ""
	}
	return "REDACTED"
}

// Outcome records what happened to one directive.
type Outcome struct {
	Directive  Directive `json:"directive"`
	StatusCode int       `json:"status_code"`
	Err        string    `json:"error,omitempty"`
}

// OK reports whether the remote call completed with a 2xx status.
func (o Outcome) OK() bool {
	return o.Err == "" && o.StatusCode >= 200 && o.StatusCode < 300
}

// TransitionRecord is the history entry written after each invocation.
type TransitionRecord struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	Parameter  string    `json:"parameter"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	NoOp       bool      `json:"no_op"`
	Outcomes   []Outcome `json:"outcomes"`
	Error      string    `json:"error,omitempty"`
}

// Succeeded reports whether the invocation finished without error and every
// attempted directive was accepted.
func (r TransitionRecord) Succeeded() bool {
	if r.Error != "" {
		return false
	}
	for _, o := range r.Outcomes {
		if !o.OK() {
			return false
		}
	}
	return true
}
