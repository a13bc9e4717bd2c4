package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"starspread/internal/history"
)

func newRunsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the local run history",
	}

	cmd.AddCommand(newRunsListCmd(opts))
	cmd.AddCommand(newRunsShowCmd(opts))
	return cmd
}

// openHistoryStore opens the history database from resolved config.
func openHistoryStore(opts *rootOptions) (*history.Store, func(), error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		return nil, nil, err
	}
	return history.NewStore(db), func() { _ = db.Close() }, nil
}

func newRunsListCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openHistoryStore(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if opts.output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}
			for _, run := range runs {
				status := "not validated"
				if run.Validated {
					status = "plans differ"
					if run.Equivalent != nil && *run.Equivalent {
						status = "equivalent"
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %-11s  %s\n",
					run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.TableName, run.Mode, status)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")

	return cmd
}

func newRunsShowCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run, including its SQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openHistoryStore(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if opts.output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run:     %s\n", run.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Table:   %s\n", run.TableName)
			fmt.Fprintf(cmd.OutOrStdout(), "Mode:    %s\n", run.Mode)
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
			if run.Validated && run.Equivalent != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Plans:   equivalent=%t\n", *run.Equivalent)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s;\n", run.Statement)
			return nil
		},
	}

	return cmd
}
