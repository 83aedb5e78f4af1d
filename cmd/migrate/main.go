// Command migrate applies, rolls back or reports the database schema.
//
//	migrate            apply pending migrations
//	migrate -down      roll back every migration
//	migrate -version   print the applied version
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/greystone/lending-api/internal/infrastructure/config"
	"github.com/greystone/lending-api/pkg/observability"
	"github.com/greystone/lending-api/pkg/postgres"
)

func main() {
	down := flag.Bool("down", false, "roll back all migrations")
	version := flag.Bool("version", false, "print the applied schema version and exit")
	dir := flag.String("path", "", "migrations directory (defaults to MIGRATIONS_PATH)")
	flag.Parse()

	cfg := config.Load()
	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      "text",
		ServiceName: "lending-migrate",
		Output:      os.Stderr,
	})

	source := cfg.DB.MigrationsPath
	if *dir != "" {
		source = *dir
	}
	dsn := cfg.DB.Postgres().DSN()

	switch {
	case *version:
		v, dirty, err := postgres.MigrationVersion(dsn, source)
		if err != nil {
			logger.Error("read schema version", "error", err)
			os.Exit(1)
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
	case *down:
		if err := postgres.RunMigrationsDown(dsn, source); err != nil {
			logger.Error("roll back migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations rolled back", "source", source)
	default:
		if err := postgres.RunMigrations(dsn, source); err != nil {
			logger.Error("apply migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied", "source", source)
	}
}
