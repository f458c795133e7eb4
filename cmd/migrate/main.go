package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"campuspulse/internal/datastore"
	"campuspulse/internal/models"
	"campuspulse/internal/services"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
			commandSeed(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			if err := datastore.CreateTables(ctx, db); err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

// insert default configs to db
func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate-config",
		Description: "Insert default configs to db",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			configs := []models.Config{
				{Key: services.CONFIG_RSVP_POINTS, Value: strconv.Itoa(services.DEFAULT_RSVP_POINTS)},
				{Key: services.CONFIG_CHECKIN_POINTS, Value: strconv.Itoa(services.DEFAULT_CHECKIN_POINTS)},
				{Key: services.CONFIG_CHALLENGE_POINTS, Value: strconv.Itoa(services.DEFAULT_CHALLENGE_POINTS)},
				{Key: services.CONFIG_CHECKIN_GRACE_MINUTES, Value: strconv.Itoa(services.DEFAULT_CHECKIN_GRACE_MINUTES)},
				{Key: services.CONFIG_CHECKIN_WINDOW_MINUTES, Value: strconv.Itoa(services.DEFAULT_CHECKIN_WINDOW_MINUTES)},
				{Key: services.CONFIG_LEADERBOARD_LIMIT, Value: strconv.Itoa(services.DEFAULT_LEADERBOARD_LIMIT)},
				{Key: services.CONFIG_PERIOD_START, Value: "2026-01-01T00:00:00Z"},
				{Key: "CRONJOB_TIME_LEADERBOARD", Value: "@every 1h"},
			}

			for _, config := range configs {
				_, err = db.NewInsert().Model(&config).Exec(ctx)
				if err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

func commandSeed() *cli.Command {
	return &cli.Command{
		Name:        "seed",
		Description: "Insert the demo catalog (events, prizes, users)",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.SeedDemo(ctx,
				datastore.NewPGUserStore(db),
				datastore.NewPGEventStore(db),
				datastore.NewPGPrizeStore(db),
			)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Seed success")

			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}
