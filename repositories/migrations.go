package repositories

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/offerlookup/offer-backend/infra"
	"github.com/offerlookup/offer-backend/utils"
)

// embed migrations sql folder
//
//go:embed migrations/*.sql
var embedMigrations embed.FS

type Migrater struct {
	pgConfig infra.PgConfig
}

func NewMigrater(pgConfig infra.PgConfig) *Migrater {
	return &Migrater{pgConfig: pgConfig}
}

func (m *Migrater) setupDbConnection() (*sql.DB, error) {
	migrationDB, err := sql.Open("pgx", m.pgConfig.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err = migrationDB.Ping(); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return migrationDB, nil
}

func (m *Migrater) Run(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)

	db, err := m.setupDbConnection()
	if err != nil {
		return fmt.Errorf("setupDbConnection error: %w", err)
	}
	defer db.Close()

	logger.InfoContext(ctx, "Migrations starting to setup DB")
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("unable to run migrations: %w", err)
	}
	return nil
}
