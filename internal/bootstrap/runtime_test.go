package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"wouldyourather/internal/config"
	"wouldyourather/internal/models"
	"wouldyourather/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func devConfig() *config.Config {
	return &config.Config{
		Env:               "development",
		DBDriver:          "sqlite",
		DBSchemaMode:      "hybrid",
		BcryptCost:        bcrypt.MinCost,
		DevBootstrapAdmin: true,
		DevAdminUsername:  "admin",
		DevAdminEmail:     "Admin@Example.com",
		DevAdminPassword:  "correct-horse",
	}
}

func TestEnsureDevAdmin_CreatesStaffSuperuser(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := devConfig()

	require.NoError(t, ensureDevAdmin(context.Background(), cfg, db))

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.IsSuperuser)
	assert.True(t, admin.IsActive)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("correct-horse")))
}

func TestEnsureDevAdmin_PromotesExistingUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	existing := testutil.CreateUser(t, db, "admin")
	cfg := devConfig()

	require.NoError(t, ensureDevAdmin(context.Background(), cfg, db))

	var admin models.User
	require.NoError(t, db.First(&admin, existing.ID).Error)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.IsSuperuser)
	assert.Equal(t, existing.Password, admin.Password, "existing password is kept")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureDevAdmin_Skipped(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"flag disabled", func(c *config.Config) { c.DevBootstrapAdmin = false }},
		{"not development", func(c *config.Config) { c.Env = "production" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewTestDB(t)
			cfg := devConfig()
			tt.mutate(cfg)

			require.NoError(t, ensureDevAdmin(context.Background(), cfg, db))

			var count int64
			require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestEnsureDevAdmin_RequiresPassword(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := devConfig()
	cfg.DevAdminPassword = ""

	err := ensureDevAdmin(context.Background(), cfg, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEV_ADMIN_PASSWORD")
}

func TestInitRuntime_SQLite(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := devConfig()
	cfg.DBSQLitePath = filepath.Join(t.TempDir(), "runtime.db")
	cfg.RedisURL = mr.Addr()

	db, rdb, err := InitRuntime(context.Background(), cfg, Options{SeedFixtures: true})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() {
		_ = rdb.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	var usernames []string
	require.NoError(t, db.Model(&models.User{}).Order("username").Pluck("username", &usernames).Error)
	assert.Equal(t, []string{"admin", "alex", "bob", "charles"}, usernames)
	assert.True(t, db.Migrator().HasTable(&models.Answer{}))
}
