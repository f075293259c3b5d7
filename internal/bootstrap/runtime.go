// Package bootstrap wires the database, schema and cache for the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"wouldyourather/internal/cache"
	"wouldyourather/internal/config"
	"wouldyourather/internal/database"
	"wouldyourather/internal/models"
	"wouldyourather/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedFixtures bool
}

// InitRuntime connects to the database, applies the schema, connects to Redis
// and optionally seeds the fixture users.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, nil, fmt.Errorf("apply schema: %w", err)
	}

	// Redis is optional; a nil client disables session revocation.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	if opts.SeedFixtures {
		res, err := seed.Users(db, cfg.BcryptCost)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed fixture users: %w", err)
		}
		log.Printf("fixture users: %d created, %d skipped", res.Created, res.Skipped)
	}

	return db, r, nil
}

// ensureDevAdmin makes sure a staff superuser exists in development when
// DEV_BOOTSTRAP_ADMIN is set. An existing account keeps its password.
func ensureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapAdmin {
		return nil
	}

	username := strings.TrimSpace(cfg.DevAdminUsername)
	if username == "" {
		username = "admin"
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@example.com"
	}
	if cfg.DevAdminPassword == "" {
		return errors.New("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}

	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("username = ?", username).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevAdminPassword), cost)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			admin = models.User{
				Username:    username,
				Email:       email,
				Password:    string(hashed),
				Avatar:      models.DefaultAvatar,
				IsStaff:     true,
				IsSuperuser: true,
				IsActive:    true,
			}
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&admin).Updates(map[string]any{
				"is_staff":     true,
				"is_superuser": true,
				"is_active":    true,
			}).Error
		}
	})
	if err != nil {
		return err
	}

	log.Printf("development admin bootstrap ensured for %s (%s)", username, email)
	return nil
}
