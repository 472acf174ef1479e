package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGridCmd(opts *rootOptions) *cobra.Command {
	var classroomID string
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print a classroom's seat grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, roster, session, err := opts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer roster.Close()

			if classroomID == "" {
				for _, summary := range session.Classrooms() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%dx%d\t%d/%d\n",
						summary.ID, summary.Name, summary.Rows, summary.Columns, summary.Occupied, summary.Capacity)
				}
				return nil
			}
			grid, err := session.SeatGrid(classroomID)
			if err != nil {
				return err
			}
			printGrid(cmd.OutOrStdout(), grid)
			return nil
		},
	}
	cmd.Flags().StringVar(&classroomID, "classroom", "", "classroom ID; lists classrooms when empty")
	return cmd
}
