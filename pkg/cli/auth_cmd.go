package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"starspread/internal/databricks"
)

func newAuthCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored workspace token",
	}

	cmd.AddCommand(newAuthLoginCmd(opts))
	cmd.AddCommand(newAuthLogoutCmd(opts))
	return cmd
}

// resolveHost returns the workspace host from flags, env or profile.
func resolveHost(opts *rootOptions) (string, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Host == "" {
		return "", fmt.Errorf("no workspace host configured (use --host or DATABRICKS_HOST)")
	}
	return cfg.Host, nil
}

func newAuthLoginCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a personal access token in the OS keyring",
		Long:  "Prompt for a Databricks personal access token and store it in the OS keyring\nunder the workspace host. The token never touches the profile file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, err := resolveHost(opts)
			if err != nil {
				return err
			}

			token := opts.token
			if token == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Token for %s: ", host)
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(string(raw))
			}
			if token == "" {
				return fmt.Errorf("no token provided")
			}

			if err := (databricks.TokenStore{}).SaveToken(host, token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token stored for %s\n", host)
			return nil
		},
	}

	return cmd
}

func newAuthLogoutCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token from the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, err := resolveHost(opts)
			if err != nil {
				return err
			}

			if err := (databricks.TokenStore{}).DeleteToken(host); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token removed for %s\n", host)
			return nil
		},
	}

	return cmd
}
