package handler

import (
	"context"
	"fmt"

	"github.com/tnicklin/actuator_loglevels/actuator"
	"github.com/tnicklin/actuator_loglevels/awsutil"
	"github.com/tnicklin/actuator_loglevels/config"
	"github.com/tnicklin/actuator_loglevels/parameters"
	"github.com/tnicklin/actuator_loglevels/secrets"
)

// Collaborators are the clients one invocation works with.
type Collaborators struct {
	Parameters parameters.Store
	Secrets    secrets.Store
	Actuator   actuator.Client
}

// Factory builds fresh collaborators for every invocation.
type Factory interface {
	New(ctx context.Context) (Collaborators, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context) (Collaborators, error)

func (f FactoryFunc) New(ctx context.Context) (Collaborators, error) { return f(ctx) }

// AWSFactory creates SSM, Secrets Manager and actuator clients from config.
type AWSFactory struct {
	AWS        awsutil.Config
	Transition config.TransitionConfig
}

func (f AWSFactory) New(_ context.Context) (Collaborators, error) {
	sess, err := awsutil.CreateSession(f.AWS)
	if err != nil {
		return Collaborators{}, fmt.Errorf("create aws session: %w", err)
	}

	tc := f.Transition
	// New connection pool per invocation.
	tc.HTTPClient = nil
	tc.Defaults()

	return Collaborators{
		Parameters: parameters.NewSSMStore(parameters.Params{Session: sess}),
		Secrets:    secrets.NewSecretsManagerStore(secrets.Params{Session: sess}),
		Actuator: actuator.New(actuator.Params{
			BaseURL:    tc.ServiceEndpoint,
			UserAgent:  tc.UserAgent,
			HTTPClient: tc.HTTPClient,
		}),
	}, nil
}
