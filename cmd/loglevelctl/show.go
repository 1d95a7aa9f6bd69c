package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "show LOGGER...",
		Short: "Show the configured and effective level of loggers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), cmd.OutOrStdout(), root, endpoint, args)
		},
	}

	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "Service endpoint (overrides transition.service_endpoint)")

	return cmd
}

func runShow(ctx context.Context, out io.Writer, root *rootOptions, endpoint string, names []string) error {
	env, err := loadEnvironment(root)
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	if endpoint != "" {
		env.cfg.Transition.ServiceEndpoint = endpoint
	}
	if env.cfg.Transition.ServiceEndpoint == "" {
		return fmt.Errorf("transition.service_endpoint (SERVICE_ENDPOINT) required")
	}

	collab, err := env.collaborators(ctx)
	if err != nil {
		return err
	}
	creds, err := env.credentials(ctx, collab)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOGGER\tCONFIGURED\tEFFECTIVE")
	for _, name := range names {
		levels, err := collab.Actuator.LoggerLevel(ctx, creds, name)
		if err != nil {
			w.Flush()
			return fmt.Errorf("get %s: %w", name, err)
		}
		configured := levels.ConfiguredLevel
		if configured == "" {
			configured = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, configured, levels.EffectiveLevel)
	}
	return w.Flush()
}
