package models

import (
	"fmt"
	"strings"
	"testing"
)

func TestCredentialsRedactsPassword(t *testing.T) {
	creds := Credentials{Username: "awslambda", Password: "s3cr3t"}

	for _, out := range []string{
		creds.String(),
		fmt.Sprintf("%v", creds),
		fmt.Sprintf("%+v", creds),
		fmt.Sprintf("%#v", creds),
	} {
		if strings.Contains(out, "s3cr3t") {
			t.Fatalf("password leaked in %q", out)
		}
		if !strings.Contains(out, "awslambda") {
			t.Fatalf("expected username in %q", out)
		}
	}
}

func TestCredentialsValid(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  bool
	}{
		{"complete", Credentials{Username: "u", Password: "p"}, true},
		{"missing password", Credentials{Username: "u"}, false},
		{"missing username", Credentials{Password: "p"}, false},
		{"blank username", Credentials{Username: "  ", Password: "p"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.creds.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransitionRecordSucceeded(t *testing.T) {
	ok := Outcome{Directive: Directive{Name: "a", Level: "DEBUG"}, StatusCode: 204}
	rejected := Outcome{Directive: Directive{Name: "b", Level: "DEBUG"}, StatusCode: 401}

	if !(TransitionRecord{Outcomes: []Outcome{ok}}).Succeeded() {
		t.Error("expected record with only 2xx outcomes to succeed")
	}
	if (TransitionRecord{Outcomes: []Outcome{ok, rejected}}).Succeeded() {
		t.Error("expected record with a rejection to fail")
	}
	if (TransitionRecord{Error: "boom"}).Succeeded() {
		t.Error("expected record with an error to fail")
	}
	if !(TransitionRecord{NoOp: true}).Succeeded() {
		t.Error("expected no-op record to succeed")
	}
}

func TestDirectiveString(t *testing.T) {
	d := Directive{Name: "org.springframework.security", Level: "DEBUG"}
	if got := d.String(); got != "org.springframework.security:DEBUG" {
		t.Fatalf("String() = %q", got)
	}
}
