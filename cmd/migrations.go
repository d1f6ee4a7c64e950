package cmd

import (
	"context"
	"fmt"

	"github.com/offerlookup/offer-backend/repositories"
	"github.com/offerlookup/offer-backend/utils"
)

func RunMigrations() error {
	pgConfig := pgConfigFromEnv()

	logger := utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", "text"))
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	migrater := repositories.NewMigrater(pgConfig)
	if err := migrater.Run(ctx); err != nil {
		logger.ErrorContext(ctx, fmt.Sprintf("error running migrations: %v", err))
		return err
	}

	return nil
}
