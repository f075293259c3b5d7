// Command main runs the database seeder for Would You Rather.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"wouldyourather/internal/config"
	"wouldyourather/internal/database"
	"wouldyourather/internal/seed"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/seed [-users N] [-questions N] [-answer-rate R] <users|questions|demo>")
}

func run() error {
	numUsers := flag.Int("users", 20, "Number of demo users to create")
	numQuestions := flag.Int("questions", 40, "Number of demo questions to create")
	answerRate := flag.Float64("answer-rate", 0.5, "Chance (0..1) that a demo user answers a question")
	rngSeed := flag.Int64("seed", 0, "Random seed for demo data (0 uses the clock)")
	flag.Parse()

	if flag.NArg() < 1 {
		return usage()
	}

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := database.ApplySchema(context.Background(), db, cfg); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	switch flag.Arg(0) {
	case "users":
		res, err := seed.Users(db, cfg.BcryptCost)
		if err != nil {
			return fmt.Errorf("user seeding failed: %w", err)
		}
		log.Printf("✓ Users: %d created, %d already present", res.Created, res.Skipped)
	case "questions":
		res, err := seed.Questions(db, cfg.BcryptCost)
		if err != nil {
			return fmt.Errorf("question seeding failed: %w", err)
		}
		log.Printf("✓ Questions: %d created, %d already present", res.Created, res.Skipped)
	case "demo":
		err := seed.Demo(db, seed.DemoOptions{
			NumUsers:     *numUsers,
			NumQuestions: *numQuestions,
			AnswerRate:   *answerRate,
			Seed:         *rngSeed,
		}, cfg.BcryptCost)
		if err != nil {
			return fmt.Errorf("demo seeding failed: %w", err)
		}
	default:
		return usage()
	}

	fx, err := seed.LoadFixtures()
	if err != nil {
		return err
	}
	log.Println("✨ All done!")
	log.Printf("📧 Seeded users have the password: %s", fx.Password)
	return nil
}
