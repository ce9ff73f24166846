// Command seed fills the posts table with fake or fixture data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"postboard/internal/bootstrap"
	"postboard/internal/config"
	"postboard/internal/middleware"
	"postboard/internal/seed"
)

func main() {
	if err := run(); err != nil {
		middleware.Logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	count := flag.Int("count", 20, "Number of fake posts to create")
	fixtures := flag.String("fixtures", "", "YAML fixture file; replaces -count")
	clean := flag.Bool("clean", false, "Delete every post before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed for fake data (0 = time based)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true, SkipRedis: true})
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	s := seed.NewSeeder(db, *seedValue)
	if *clean {
		if err := s.Clean(ctx); err != nil {
			return err
		}
	}

	if *fixtures != "" {
		fx, err := seed.LoadFixturesFile(*fixtures)
		if err != nil {
			return err
		}
		posts, err := s.SeedFixtures(ctx, fx)
		if err != nil {
			return err
		}
		middleware.Logger.Info("fixtures seeded", "file", *fixtures, "posts", len(posts))
		return nil
	}

	posts, err := s.SeedFake(ctx, *count)
	if err != nil {
		return err
	}
	middleware.Logger.Info("fake posts seeded", "posts", len(posts))
	return nil
}
