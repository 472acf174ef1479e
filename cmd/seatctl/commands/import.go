package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-seating-api/internal/bootstrap"
	"github.com/noah-isme/sma-seating-api/internal/service"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert students from an xlsx roster into the roster store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			roster, err := bootstrap.OpenRoster(cmd.Context(), cfg, nil, zap.NewNop())
			if err != nil {
				return err
			}
			defer roster.Close()

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open %s: %w", file, err)
			}
			defer f.Close()

			result, err := service.NewRosterImportService(roster.Upserter, nil, zap.NewNop()).Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			green.Fprintf(out, "imported %d students\n", result.Imported)
			for _, skipped := range result.Skipped {
				fmt.Fprintf(out, "  skipped row %d: %s\n", skipped.Row, skipped.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "roster workbook (.xlsx)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
