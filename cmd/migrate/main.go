package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jhoicas/stockmanager-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockmanager-api/pkg/config"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
)

// Uso: go run ./cmd/migrate -cmd up|down|status|version [-arg N]
func main() {
	command := flag.String("cmd", "up", "comando goose: up, down, status, version, up-to, down-to")
	arg := flag.String("arg", "", "argumento del comando (versión para up-to/down-to)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPoolWithRetry(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var args []string
	if *arg != "" {
		args = append(args, *arg)
	}
	if err := postgres.Migrate(ctx, pool, *command, args...); err != nil {
		log.Error().Err(err).Str("cmd", *command).Msg("migración fallida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Str("cmd", *command).Str("db", postgres.RedactDSN(cfg.DB.ConnectionString())).Msg("migración completada")
}
