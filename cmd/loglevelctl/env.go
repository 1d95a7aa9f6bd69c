package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tnicklin/actuator_loglevels/config"
	"github.com/tnicklin/actuator_loglevels/handler"
	"github.com/tnicklin/actuator_loglevels/logger"
	"github.com/tnicklin/actuator_loglevels/models"
	"github.com/tnicklin/actuator_loglevels/secrets"
)

// Local credentials bypass the secret store when both are set.
const (
	envUsername = "ACTUATOR_USERNAME"
	envPassword = "ACTUATOR_PASSWORD"

	localSecretID = "env"
)

type environment struct {
	cfg    *config.AppConfig
	logger logger.Logger
}

func loadEnvironment(opts *rootOptions) (*environment, error) {
	cfg, err := config.LoadWithDefaults(opts.configFiles...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Keep stdout for command output.
	cfg.Logger.OutputPaths = []string{"stderr"}
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	return &environment{cfg: cfg, logger: appLogger}, nil
}

func (e *environment) collaborators(ctx context.Context) (handler.Collaborators, error) {
	collab, err := handler.AWSFactory{
		AWS:        e.cfg.AWS,
		Transition: e.cfg.Transition,
	}.New(ctx)
	if err != nil {
		return handler.Collaborators{}, err
	}

	if creds, ok := localCredentials(); ok {
		e.logger.InfoW("using local credentials", "username", creds.Username)
		collab.Secrets = secrets.Static(creds)
		if e.cfg.Transition.SecretID == "" {
			e.cfg.Transition.SecretID = localSecretID
		}
	}
	return collab, nil
}

func (e *environment) credentials(ctx context.Context, collab handler.Collaborators) (models.Credentials, error) {
	if e.cfg.Transition.SecretID == "" {
		return models.Credentials{}, fmt.Errorf("transition.secret_id (AWS_ACTUATOR_SECRET) or %s/%s required", envUsername, envPassword)
	}
	return collab.Secrets.Credentials(ctx, e.cfg.Transition.SecretID)
}

func localCredentials() (models.Credentials, bool) {
	creds := models.Credentials{
		Username: os.Getenv(envUsername),
		Password: os.Getenv(envPassword),
	}
	return creds, creds.Valid()
}
