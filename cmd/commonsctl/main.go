// commonsctl - công cụ vận hành: migrate schema, tra cứu ISBN.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"books-commons/internal/config"
	"books-commons/internal/infrastructure/database"
	"books-commons/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "commonsctl",
	Short:         "Operations tool for the Books Commons backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	},
}

func main() {
	rootCmd.AddCommand(migrateCmd, lookupCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openDatabase - connect PostgreSQL theo DB_* env, caller phải Close
func openDatabase(ctx context.Context) (*database.PostgresDB, error) {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	log.Debug().Str("host", dbConfig.Host).Str("db", dbConfig.DBName).Msg("Database connected")
	return db, nil
}
