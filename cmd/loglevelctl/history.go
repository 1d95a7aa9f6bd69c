package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tnicklin/actuator_loglevels/models"
	"github.com/tnicklin/actuator_loglevels/store"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit        int
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded transitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(root)
			if err != nil {
				return err
			}
			defer env.logger.Sync()

			if env.cfg.Store.Path == "" {
				return fmt.Errorf("store.path (HISTORY_PATH) required")
			}
			st := store.NewSQLiteStore(store.Params{Path: env.cfg.Store.Path, Logger: env.logger})
			if err := st.Open(cmd.Context()); err != nil {
				return err
			}
			defer st.Close()

			return runHistory(cmd.Context(), cmd.OutOrStdout(), st, limit, outputFormat)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of transitions to list")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runHistory(ctx context.Context, out io.Writer, st store.Store, limit int, format string) error {
	records, err := st.ListTransitions(ctx, limit)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		if records == nil {
			records = []models.TransitionRecord{}
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))

	case "text":
		if len(records) == 0 {
			fmt.Fprintln(out, "No transitions recorded.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tSOURCE\tPARAMETER\tDIRECTIVES\tRESULT")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				rec.StartedAt.UTC().Format(time.RFC3339),
				rec.Trigger,
				rec.Parameter,
				len(rec.Outcomes),
				result(rec),
			)
		}
		return w.Flush()

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

func result(rec models.TransitionRecord) string {
	switch {
	case rec.Error != "":
		return "failed: " + rec.Error
	case rec.NoOp:
		return "no-op"
	case !rec.Succeeded():
		return "rejected"
	default:
		return "ok"
	}
}
