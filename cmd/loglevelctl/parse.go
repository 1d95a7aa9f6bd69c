package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tnicklin/actuator_loglevels/directives"
	"github.com/tnicklin/actuator_loglevels/models"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse DIRECTIVES",
		Short: "Parse a directive list without applying it",
		Long: `Parse shows how a parameter value will be interpreted.

Examples:
    loglevelctl parse "org.springframework.security:DEBUG,com.example:ERROR"
    loglevelctl parse "a:DEBUG,broken" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.OutOrStdout(), args[0], outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

type parseOutput struct {
	Directives []models.Directive   `json:"directives"`
	Skipped    []directives.Skipped `json:"skipped"`
}

func runParse(out io.Writer, raw, format string) error {
	res := directives.Parse(raw)

	switch format {
	case "json":
		po := parseOutput{
			Directives: append([]models.Directive{}, res.Directives...),
			Skipped:    append([]directives.Skipped{}, res.Skipped...),
		}
		data, err := json.MarshalIndent(po, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))

	case "text":
		if res.Empty() {
			fmt.Fprintln(out, "No directives found.")
		}
		for i, d := range res.Directives {
			fmt.Fprintf(out, "%d  %s -> %s\n", i+1, d.Name, d.Level)
		}
		for _, s := range res.Skipped {
			fmt.Fprintf(out, "skipped  %s\n", s)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
