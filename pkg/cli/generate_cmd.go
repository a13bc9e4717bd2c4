package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"starspread/internal/config"
	"starspread/internal/databricks"
	"starspread/internal/history"
	"starspread/internal/service"
	"starspread/internal/validate"
)

// buildExpandService wires the workspace client, validator and history store
// from resolved config. The returned cleanup closes the history database.
func buildExpandService(cfg *config.Config, withHistory bool) (*service.ExpandService, func(), error) {
	token, err := databricks.ResolveToken(cfg.Token, cfg.Host)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set DATABRICKS_TOKEN or run 'starspread auth login')", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	client, err := databricks.New(databricks.Config{
		Host:              cfg.Host,
		Token:             token,
		WarehouseID:       cfg.WarehouseID,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var store *history.Store
	if withHistory {
		db, err := history.Open(cfg.HistoryDBPath)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = db.Close() }
		store = history.NewStore(db)
	}

	return service.NewExpandService(client, validate.New(client), store, logger), cleanup, nil
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		mode        string
		doValidate  bool
		concurrency int
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "generate <catalog.schema.table> [more tables...]",
		Short: "Generate explicit projections for one or more tables",
		Example: `  # Reconstruct nested columns for one table
  starspread generate main.silver.orders

  # Flatten nested columns for several tables, checking EXPLAIN plans
  starspread generate --mode flatten --validate main.silver.orders main.silver.customers`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			svc, cleanup, err := buildExpandService(cfg, !noHistory)
			if err != nil {
				return err
			}
			defer cleanup()

			reqs := make([]service.ExpandRequest, len(args))
			for i, table := range args {
				reqs[i] = service.ExpandRequest{Table: table, Mode: mode, Validate: doValidate}
			}

			results, err := svc.ExpandMany(cmd.Context(), reqs, concurrency)
			if err != nil {
				return err
			}

			return printResults(cmd.OutOrStdout(), results, opts.output)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Projection mode (reconstruct, flatten)")
	cmd.Flags().BoolVar(&doValidate, "validate", false, "Compare EXPLAIN plans against SELECT *")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Tables expanded in parallel")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record runs in the local history database")

	return cmd
}

func printResults(w io.Writer, results []*service.ExpandResult, output string) error {
	if output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "-- %s (%s)\n", result.Table, result.Mode)
		fmt.Fprintln(w, result.Statement+";")
		if result.Validation != nil {
			if result.Validation.Equivalent {
				fmt.Fprintln(w, "-- plans match: projection is equivalent to SELECT *")
			} else {
				fmt.Fprintln(w, "-- PLANS DIFFER:")
				for _, diff := range result.Validation.Differences {
					fmt.Fprintf(w, "--   %s\n", diff)
				}
			}
		}
	}
	return nil
}
