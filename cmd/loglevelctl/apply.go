package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tnicklin/actuator_loglevels/models"
	"github.com/tnicklin/actuator_loglevels/parameters"
	"github.com/tnicklin/actuator_loglevels/store"
	"github.com/tnicklin/actuator_loglevels/transition"
)

const inlineParameter = "inline"

type applyOptions struct {
	param      string
	directives string
	endpoint   string
	strict     bool
}

func newApplyCmd(root *rootOptions) *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply logger levels to the service",
		Long: `Apply reads a directive list and POSTs each entry to /actuator/loggers/{name}.

Examples:
    loglevelctl apply --param /greeter/verbose-logs
    loglevelctl apply --directives "org.springframework.security:WARN,com.example:ERROR"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), cmd.OutOrStdout(), root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.param, "param", "p", "", "Parameter store name (overrides transition.parameter_name)")
	cmd.Flags().StringVarP(&opts.directives, "directives", "d", "", "Directive list to apply instead of reading the parameter store")
	cmd.Flags().StringVarP(&opts.endpoint, "endpoint", "e", "", "Service endpoint (overrides transition.service_endpoint)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when any directive is rejected")
	cmd.MarkFlagsMutuallyExclusive("param", "directives")

	return cmd
}

func runApply(ctx context.Context, out io.Writer, root *rootOptions, opts *applyOptions) error {
	env, err := loadEnvironment(root)
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	tc := &env.cfg.Transition
	if opts.endpoint != "" {
		tc.ServiceEndpoint = opts.endpoint
	}
	if opts.param != "" {
		tc.ParameterName = opts.param
	}
	if opts.strict {
		tc.StrictStatus = true
	}

	collab, err := env.collaborators(ctx)
	if err != nil {
		return err
	}
	if opts.directives != "" {
		tc.ParameterName = inlineParameter
		collab.Parameters = parameters.Static{inlineParameter: opts.directives}
	}
	if err := tc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", transition.ErrConfiguration, err)
	}

	tr, err := transition.New(transition.Params{
		Parameters:    collab.Parameters,
		Secrets:       collab.Secrets,
		Actuator:      collab.Actuator,
		Logger:        env.logger,
		ParameterName: tc.ParameterName,
		SecretID:      tc.SecretID,
		StrictStatus:  tc.StrictStatus,
	})
	if err != nil {
		return err
	}

	rec := models.TransitionRecord{
		ID:        uuid.New().String(),
		Trigger:   "loglevelctl",
		Parameter: tc.ParameterName,
		StartedAt: time.Now(),
	}
	report, runErr := tr.Run(ctx)
	rec.FinishedAt = time.Now()
	rec.NoOp = report.NoOp
	rec.Outcomes = report.Outcomes
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if env.cfg.Store.Path != "" {
		if err := recordHistory(ctx, env, rec); err != nil {
			env.logger.WarnW("record transition", "error", err)
		}
	}

	printReport(out, report)
	return runErr
}

func recordHistory(ctx context.Context, env *environment, rec models.TransitionRecord) error {
	st := store.NewSQLiteStore(store.Params{Path: env.cfg.Store.Path, Logger: env.logger})
	if err := st.Open(ctx); err != nil {
		return err
	}
	defer st.Close()
	return st.RecordTransition(ctx, rec)
}

func printReport(out io.Writer, report transition.Report) {
	for _, s := range report.Skipped {
		fmt.Fprintf(out, "skipped  %s\n", s)
	}
	if report.NoOp {
		fmt.Fprintf(out, "nothing to apply from %s\n", report.Parameter)
		return
	}
	for _, o := range report.Outcomes {
		if o.Err != "" {
			fmt.Fprintf(out, "%-7s  %s -> %s: %s\n", "error", o.Directive.Name, o.Directive.Level, o.Err)
			continue
		}
		fmt.Fprintf(out, "%-7d  %s -> %s\n", o.StatusCode, o.Directive.Name, o.Directive.Level)
	}
}
