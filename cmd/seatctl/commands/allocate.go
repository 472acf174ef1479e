package commands

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-seating-api/internal/dto"
	"github.com/noah-isme/sma-seating-api/internal/service"
)

func newAllocateCmd(opts *rootOptions) *cobra.Command {
	var (
		req      dto.AllocateRequest
		row, col int
	)
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Seat one student",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, roster, session, err := opts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer roster.Close()

			req.Row, req.Column = &row, &col
			allocator := service.NewAllocationService(session, nil, nil, nil, nil, service.AllocationConfig{
				AdjacencyRadius: cfg.Seating.AdjacencyRadius,
				PersistTimeout:  cfg.Seating.PersistTimeout,
			})
			result, err := allocator.Allocate(cmd.Context(), req)
			if err != nil {
				return err
			}
			printAllocation(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.StudentID, "student", "", "student ID")
	cmd.Flags().StringVar(&req.ClassroomID, "classroom", "", "classroom ID")
	cmd.Flags().IntVar(&row, "row", 0, "zero based row")
	cmd.Flags().IntVar(&col, "col", 0, "zero based column")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("classroom")
	_ = cmd.MarkFlagRequired("row")
	_ = cmd.MarkFlagRequired("col")
	return cmd
}
