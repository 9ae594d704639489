package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"foodgram/internal/database/psql"
	"foodgram/pkg/config"
	"foodgram/pkg/lib/logger"
	"foodgram/pkg/lib/logger/sl"
)

func main() {
	cmd := flag.String("cmd", "status", "migration command: up|down|status|version|redo|reset")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.SetupLogger(cfg.HTTP.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logger: %v\n", err)
		os.Exit(1)
	}
	log = log.With("cmd", *cmd)

	switch *cmd {
	case "up", "down", "status", "version", "redo", "reset":
	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(2)
	}

	db, err := psql.Connect(log, cfg.ConnectionString())
	if err != nil {
		os.Exit(1)
	}
	defer db.Close()

	if err := psql.Migrate(context.Background(), db, *cmd, flag.Args()...); err != nil {
		log.Error("Migration failed", sl.Err(err))
		db.Close()
		os.Exit(1)
	}

	log.Info("Migration finished")
}
