package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/offerlookup/offer-backend/cmd"
	"github.com/offerlookup/offer-backend/utils"
)

// Overridden at build time with -ldflags "-X main.apiVersion=..."
var apiVersion = "local-dev"

func main() {
	// a missing .env file is fine, the environment may be set by other means
	_ = godotenv.Load()

	shouldRunMigrations := flag.Bool("migrations", false, "Run migrations")
	shouldRunServer := flag.Bool("server", false, "Run server")
	shouldRunWorker := flag.Bool("worker", false, "Run the ingestion workers")
	flag.Parse()

	logger := utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", "text"))
	logger.Info("starting offer-backend",
		slog.String("version", apiVersion),
		slog.Bool("migrations", *shouldRunMigrations),
		slog.Bool("server", *shouldRunServer),
		slog.Bool("worker", *shouldRunWorker))

	compiledConfig := cmd.CompiledConfig{Version: apiVersion}

	if *shouldRunMigrations {
		if err := cmd.RunMigrations(); err != nil {
			log.Fatal(err)
		}
	}

	switch {
	case *shouldRunServer:
		if err := cmd.RunServer(compiledConfig, *shouldRunWorker); err != nil {
			os.Exit(1)
		}
	case *shouldRunWorker:
		if err := cmd.RunTaskQueue(compiledConfig); err != nil {
			os.Exit(1)
		}
	}
}
