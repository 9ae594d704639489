package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"foodgram/internal/database/psql"
	"foodgram/internal/fixtures"
	catalogservice "foodgram/internal/service/catalog"
	"foodgram/pkg/config"
	"foodgram/pkg/lib/logger"
	"foodgram/pkg/lib/logger/sl"
)

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "JSON array of {name, measurement_unit}")
	tagsPath := flag.String("tags", "", "optional JSON array of {name, slug, color}")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall import timeout")
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

	storage, err := psql.New(log, cfg.ConnectionString())
	if err != nil {
		os.Exit(1)
	}
	defer storage.Close()

	catalog := catalogservice.New(log, storage)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, catalog, *ingredientsPath, *tagsPath); err != nil {
		log.Error("Import failed", sl.Err(err))
		cancel()
		storage.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, catalog *catalogservice.CatalogService, ingredientsPath, tagsPath string) error {
	if ingredientsPath != "" {
		ingredients, err := fixtures.LoadIngredients(ingredientsPath)
		if err != nil {
			return err
		}
		if _, err := catalog.ImportIngredients(ctx, ingredients); err != nil {
			return err
		}
	}

	if tagsPath != "" {
		tags, err := fixtures.LoadTags(tagsPath)
		if err != nil {
			return err
		}
		if _, err := catalog.ImportTags(ctx, tags); err != nil {
			return err
		}
	}

	return nil
}
