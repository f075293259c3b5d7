// Package main provides staff management utilities for Would You Rather.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"wouldyourather/internal/config"
	"wouldyourather/internal/database"
	"wouldyourather/internal/repository"
	"wouldyourather/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <username>   - Grant staff access")
		fmt.Println("  go run ./cmd/admin demote <username>    - Revoke staff access")
		fmt.Println("  go run ./cmd/admin list-staff           - List staff and superusers")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	users := service.NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	command := os.Args[1]
	switch command {
	case "promote", "demote":
		if len(os.Args) < 3 {
			fmt.Printf("Usage: go run ./cmd/admin %s <username>\n", command)
			os.Exit(1)
		}
		setStaff(ctx, users, os.Args[2], command == "promote")

	case "list-staff":
		listStaff(ctx, users)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func setStaff(ctx context.Context, users *service.UserService, username string, staff bool) {
	if err := users.SetStaff(ctx, username, staff); err != nil {
		log.Fatalf("Failed to update %s: %v", username, err)
	}
	if staff {
		fmt.Printf("✅ Successfully promoted %s to staff\n", username)
	} else {
		fmt.Printf("✅ Successfully demoted %s from staff\n", username)
	}
}

func listStaff(ctx context.Context, users *service.UserService) {
	staff, err := users.ListStaff(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch staff: %v", err)
	}

	total, err := users.CountUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to count users: %v", err)
	}

	if len(staff) == 0 {
		fmt.Printf("No staff found among %d users\n", total)
		return
	}

	fmt.Printf("Staff (%d of %d users):\n", len(staff), total)
	for _, u := range staff {
		role := "staff"
		if u.IsSuperuser {
			role = "superuser"
		}
		fmt.Printf("  - %s <%s> [%s] joined %s\n", u.Username, u.Email, role, u.DateJoined.Format("2006-01-02"))
	}
}
