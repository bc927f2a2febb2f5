package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"

	"promobot/internal/datastore"
	"promobot/internal/models"
	"promobot/internal/services"
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
			commandInitAdmin(),
			commandConfigMigration(),
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

			err = datastore.CreateTableUser(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTablePromo(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableClaim(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableActivation(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableStaff(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

// commandInitAdmin seeds the first admin so the roster is never empty; every
// later admin is added through the bot by an existing one.
func commandInitAdmin() *cli.Command {
	return &cli.Command{
		Name:      "init-admin",
		Usage:     "insert the first admin by telegram id",
		ArgsUsage: "<telegram-id>",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			adminID, err := strconv.ParseInt(c.Args().First(), 10, 64)
			if err != nil {
				return fmt.Errorf("telegram id must be a number: %w", err)
			}

			staff := &models.Staff{
				ID:        adminID,
				FirstName: "Admin",
				Role:      models.RoleAdmin,
				IsActive:  true,
				AddedAt:   time.Now(),
			}

			_, err = datastore.CreateStaff(ctx, db, staff)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Admin created:", adminID)

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
				{Key: services.CONFIG_SERVER_MODE, Value: services.SERVER_MODE_PRODUCTION},
				{Key: services.CONFIG_REQUIRED_CHANNEL, Value: os.Getenv("GROUP_ID")},
				{Key: services.CONFIG_SUPPORT_CONTACT, Value: ""},
				{Key: services.CONFIG_HISTORY_PAGE_LIMIT, Value: "20"},
				{Key: services.CONFIG_ADMIN_CHAT_ID, Value: ""},
				{Key: services.CONFIG_CRONJOB_TIME_EXPIRY_SWEEP, Value: "@every 1h"},
				{Key: services.CONFIG_CRONJOB_TIME_DAILY_SUMMARY, Value: "0 9 * * *"},
			}

			for _, config := range configs {
				_, err = datastore.InsertConfig(ctx, db, &config)
				if err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
