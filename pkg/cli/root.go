// Package cli implements the starspread command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"starspread/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	profile   string
	host      string
	token     string
	warehouse string
	output    string
}

// loadConfig resolves configuration with flag > env > profile precedence.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	profilePath := o.profile
	if profilePath == "" {
		profilePath = config.DefaultProfilePath()
	}

	cfg, err := config.Load(profilePath)
	if err != nil {
		return nil, err
	}

	if o.host != "" {
		cfg.Host = o.host
	}
	if o.token != "" {
		cfg.Token = o.token
	}
	if o.warehouse != "" {
		cfg.WarehouseID = o.warehouse
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "starspread",
		Short:         "Expand SELECT * into explicit Databricks projections",
		Long:          "starspread reads Unity Catalog table metadata and rewrites wildcard selections\ninto explicit column projections that reconstruct nested STRUCT, ARRAY and MAP\ncolumns.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.output != "" && opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", opts.output)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.profile, "profile", "p", "", "Path to YAML profile file (default ~/.starspread.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.host, "host", "", "Databricks workspace URL")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "Databricks personal access token")
	rootCmd.PersistentFlags().StringVar(&opts.warehouse, "warehouse", "", "SQL warehouse ID or HTTP path")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format (text, json)")

	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newRunsCmd(opts))
	rootCmd.AddCommand(newAuthCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "starspread %s (commit %s)\n", version, commit)
			return nil
		},
	}
}
