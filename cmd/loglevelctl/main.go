// Command loglevelctl applies and inspects actuator logger levels from a
// workstation, using the same configuration as the Lambda handler.
//
// Usage:
//
//	loglevelctl apply --param /greeter/verbose-logs
//	loglevelctl apply --directives "org.springframework.security:DEBUG"
//	loglevelctl parse "a.b.c:DEBUG,x.y:ERROR"
//	loglevelctl show org.springframework.security
//	loglevelctl history --limit 10
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFiles []string
	envFile     string
}

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "loglevelctl",
		Short:         "Apply and inspect actuator logger levels",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(opts.envFile)
		},
	}
	rootCmd.PersistentFlags().StringSliceVarP(&opts.configFiles, "config", "c", []string{"config/config.yaml"}, "YAML config files, later files override earlier ones")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before config, ignored when missing")

	rootCmd.AddCommand(
		newApplyCmd(opts),
		newParseCmd(),
		newShowCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "loglevelctl %s\n", getVersion())
		},
	}
}
