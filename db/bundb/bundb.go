package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/dip-scoring/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DBService holds the bun connection and the repositories built on it.
type DBService struct {
	ScoringDB scoringdb.Repository
	db        *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// Ping checks the connection is alive.
func (dbService *DBService) Ping(ctx context.Context) error {
	return dbService.db.PingContext(ctx)
}

// Close closes the connection pool.
func (dbService *DBService) Close() error {
	return dbService.db.Close()
}

// NewBunDBService initializes a new DBService with the provided Postgres configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := BunDB(sqldb)
	logger.InfoContext(ctx, "Postgres connection established")

	return &DBService{
		ScoringDB: scoringdb.NewRepository(db),
		db:        db,
	}, nil
}

// BunDB returns a new bun.DB for given sql.DB connection pool with the
// scoring models registered.
func BunDB(sqldb *sql.DB) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel(
		(*scoringdb.Tournament)(nil),
		(*scoringdb.Round)(nil),
		(*scoringdb.Game)(nil),
		(*scoringdb.Player)(nil),
		(*scoringdb.RoundPlayer)(nil),
		(*scoringdb.GamePlayer)(nil),
		(*scoringdb.CentreCount)(nil),
		(*scoringdb.DrawProposal)(nil),
	)
	return db
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
