package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"strings"

	scoringmigrations "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/dip-scoring/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN))), pgdialect.New())
	defer db.Close()

	modules := moduleMigrators{
		"scoring": migrate.NewMigrator(db, scoringmigrations.Migrations),
	}

	cliApp := &cli.App{
		Name:  "bun",
		Usage: "schema migrations for the scoring service",
		Commands: []*cli.Command{
			modules.command(),
			newRiverCommand(cfg.Postgres.DSN),
		},
	}

	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Fatal(err)
	}
}

// moduleMigrators maps a module name to the migrator for its tables.
type moduleMigrators map[string]*migrate.Migrator

// each runs fn for every module in name order.
func (m moduleMigrators) each(fn func(name string, migrator *migrate.Migrator) error) error {
	for _, name := range slices.Sorted(maps.Keys(m)) {
		if err := fn(name, m[name]); err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
	}
	return nil
}

// lookup resolves the module named by the first argument.
func (m moduleMigrators) lookup(c *cli.Context) (string, *migrate.Migrator, error) {
	name := c.Args().First()
	migrator, ok := m[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown module %q (have %s)", name, strings.Join(slices.Sorted(maps.Keys(m)), ", "))
	}
	return name, migrator, nil
}

func (m moduleMigrators) command() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "module table migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create the bun migration tables",
				Action: func(c *cli.Context) error {
					return m.each(func(name string, migrator *migrate.Migrator) error {
						fmt.Printf("%s: init\n", name)
						return migrator.Init(c.Context)
					})
				},
			},
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					return m.each(func(name string, migrator *migrate.Migrator) error {
						group, err := migrator.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("%s: up to date\n", name)
							return nil
						}
						fmt.Printf("%s: migrated to %s\n", name, group)
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the last migration group",
				Action: func(c *cli.Context) error {
					return m.each(func(name string, migrator *migrate.Migrator) error {
						group, err := migrator.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("%s: nothing to roll back\n", name)
							return nil
						}
						fmt.Printf("%s: rolled back %s\n", name, group)
						return nil
					})
				},
			},
			{
				Name:      "create",
				Usage:     "create a Go migration",
				ArgsUsage: "<module> <words...>",
				Action: func(c *cli.Context) error {
					name, migrator, err := m.lookup(c)
					if err != nil {
						return err
					}
					mf, err := migrator.CreateGoMigration(c.Context, strings.Join(c.Args().Tail(), "_"))
					if err != nil {
						return err
					}
					fmt.Printf("%s: created %s (%s)\n", name, mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print applied and pending migrations",
				Action: func(c *cli.Context) error {
					return m.each(func(name string, migrator *migrate.Migrator) error {
						ms, err := migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("%s:\n  applied:   %s\n  unapplied: %s\n", name, ms.Applied(), ms.Unapplied())
						return nil
					})
				},
			},
		},
	}
}

// newRiverCommand manages the queue tables, which River migrates itself.
func newRiverCommand(dsn string) *cli.Command {
	run := func(ctx context.Context, direction rivermigrate.Direction, opts *rivermigrate.MigrateOpts) error {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return fmt.Errorf("failed to connect for River migrations: %w", err)
		}
		defer pool.Close()

		migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
		if err != nil {
			return err
		}
		res, err := migrator.Migrate(ctx, direction, opts)
		if err != nil {
			return err
		}
		if len(res.Versions) == 0 {
			fmt.Println("river: up to date")
		}
		for _, v := range res.Versions {
			fmt.Printf("river: %s version %d\n", direction, v.Version)
		}
		return nil
	}

	return &cli.Command{
		Name:  "river",
		Usage: "queue table migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply River migrations",
				Action: func(c *cli.Context) error {
					return run(c.Context, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
				},
			},
			{
				Name:  "down",
				Usage: "roll back the last River migration",
				Action: func(c *cli.Context) error {
					return run(c.Context, rivermigrate.DirectionDown, &rivermigrate.MigrateOpts{MaxSteps: 1})
				},
			},
		},
	}
}
