package main

import (
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/tnicklin/actuator_loglevels/config"
	"github.com/tnicklin/actuator_loglevels/discord"
	"github.com/tnicklin/actuator_loglevels/handler"
	"github.com/tnicklin/actuator_loglevels/logger"
	"github.com/tnicklin/actuator_loglevels/store"
)

func main() {
	h, err := build()
	if err != nil {
		log.Fatal(err)
	}

	lambda.Start(h.Handle)
}

func build() (*handler.Handler, error) {
	cfg, err := config.LoadWithDefaults("config/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	if err = cfg.Transition.Validate(); err != nil {
		appLogger.ErrorW("invalid configuration", "error", err)
		return nil, err
	}

	var st store.Store
	if cfg.Store.Path != "" {
		st = store.NewSQLiteStore(store.Params{Path: cfg.Store.Path, Logger: appLogger})
	}

	var notifier discord.Notifier = discord.Nop{}
	if cfg.Discord.Enabled() {
		notifier, err = discord.New(discord.Params{Config: cfg.Discord, Logger: appLogger})
		if err != nil {
			return nil, fmt.Errorf("initialize discord: %w", err)
		}
	}

	return handler.New(handler.Params{
		Factory: handler.AWSFactory{
			AWS:        cfg.AWS,
			Transition: cfg.Transition,
		},
		Transition: cfg.Transition,
		Store:      st,
		Notifier:   notifier,
		Logger:     appLogger,
	})
}
