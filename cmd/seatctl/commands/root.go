package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-seating-api/internal/bootstrap"
	"github.com/noah-isme/sma-seating-api/internal/service"
	"github.com/noah-isme/sma-seating-api/pkg/config"
)

type rootOptions struct {
	rosterSource string
	rosterFile   string
}

// NewRootCmd builds the seatctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "seatctl",
		Short: "seatctl - operate the classroom seating roster",
		Long: `seatctl imports roster spreadsheets, prints classroom seat grids and
allocates single seats against the configured roster source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
		SilenceErrors:      true,
		SilenceUsage:       true,
	}
	root.PersistentFlags().StringVar(&opts.rosterSource, "roster", "", "roster source: postgres, xlsx or memory (default from SEATING_ROSTER_SOURCE)")
	root.PersistentFlags().StringVar(&opts.rosterFile, "roster-file", "", "workbook used by the xlsx roster source")

	root.AddCommand(newImportCmd(opts), newGridCmd(opts), newAllocateCmd(opts))
	return root
}

// Execute runs seatctl. Errors are printed in colour and returned for the exit code.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		return err
	}
	return nil
}

// loadConfig applies flag overrides on top of the environment configuration.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.rosterSource != "" {
		cfg.Seating.RosterSource = o.rosterSource
	}
	if o.rosterFile != "" {
		cfg.Seating.RosterFile = o.rosterFile
		if o.rosterSource == "" {
			cfg.Seating.RosterSource = config.RosterSourceXLSX
		}
	}
	return cfg, nil
}

// openSession opens the roster and loads a seating session from it.
func (o *rootOptions) openSession(ctx context.Context) (*config.Config, *bootstrap.Roster, *service.Session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	roster, err := bootstrap.OpenRoster(ctx, cfg, nil, zap.NewNop())
	if err != nil {
		return nil, nil, nil, err
	}
	session := service.NewSession(roster.Source, service.SessionConfig{
		DefaultRows:    cfg.Seating.DefaultRows,
		DefaultColumns: cfg.Seating.DefaultColumns,
	}, zap.NewNop())
	if err := session.Load(ctx); err != nil {
		roster.Close()
		return nil, nil, nil, err
	}
	return cfg, roster, session, nil
}
