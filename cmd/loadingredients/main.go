package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/forkful/backend/config"
	"github.com/forkful/backend/internal/database"
	"github.com/forkful/backend/internal/service"
)

// Loads the ingredient catalog from a two-column (name, measurement
// unit) CSV file. Safe to re-run: existing rows are left untouched.
func main() {
	path := flag.String("file", "data/ingredients.csv", "Path to the ingredients CSV file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("failed to open catalog file")
	}
	defer f.Close()

	count, err := service.NewCatalogService(db).ImportIngredients(context.Background(), f)
	if err != nil {
		log.Fatal().Err(err).Int("imported", count).Msg("import failed")
	}
	log.Info().Int("imported", count).Msg("ingredient catalog loaded")
}
