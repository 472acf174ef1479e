// Package bootstrap opens the roster source selected by configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-seating-api/internal/models"
	"github.com/noah-isme/sma-seating-api/internal/repository"
	"github.com/noah-isme/sma-seating-api/internal/service"
	"github.com/noah-isme/sma-seating-api/pkg/config"
	"github.com/noah-isme/sma-seating-api/pkg/database"
)

// StudentUpserter stores imported students.
type StudentUpserter interface {
	UpsertStudents(ctx context.Context, students []models.Student) (int, error)
}

// Roster is an opened roster source. Source and Upserter are the same store.
type Roster struct {
	Source   service.RosterSource
	Upserter StudentUpserter
	db       *sqlx.DB
}

// Close releases the database connection, if any.
func (r *Roster) Close() {
	if r != nil && r.db != nil {
		_ = r.db.Close()
	}
}

// OpenRoster connects the configured roster source. An empty source means postgres.
func OpenRoster(ctx context.Context, cfg *config.Config, observer repository.QueryObserver, logger *zap.Logger) (*Roster, error) {
	switch cfg.Seating.RosterSource {
	case config.RosterSourcePostgres, "":
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		repo := repository.NewRosterRepository(db, observer)
		return &Roster{Source: repo, Upserter: repo, db: db}, nil
	case config.RosterSourceXLSX:
		roster, err := service.LoadXLSXRoster(cfg.Seating.RosterFile, logger)
		if err != nil {
			return nil, err
		}
		return &Roster{Source: roster, Upserter: roster}, nil
	case config.RosterSourceMemory:
		roster := service.NewMemoryRoster(nil, []models.Classroom{{ID: service.DefaultClassroomID, Name: "Hall 1"}})
		return &Roster{Source: roster, Upserter: roster}, nil
	default:
		return nil, fmt.Errorf("unknown roster source %q", cfg.Seating.RosterSource)
	}
}
