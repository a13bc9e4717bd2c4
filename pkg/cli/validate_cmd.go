package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"starspread/internal/service"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "validate <catalog.schema.table>",
		Short: "Check that the generated projection matches SELECT * by EXPLAIN plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			svc, cleanup, err := buildExpandService(cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Expand(cmd.Context(), service.ExpandRequest{
				Table:    args[0],
				Mode:     mode,
				Validate: true,
			})
			if err != nil {
				return err
			}

			if opts.output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.Validation)
			}

			if result.Validation.Equivalent {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: equivalent\n", result.Table)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: plans differ\n", result.Table)
			for _, diff := range result.Validation.Differences {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", diff)
			}
			return fmt.Errorf("projection is not equivalent to SELECT *")
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Projection mode (reconstruct, flatten)")

	return cmd
}
