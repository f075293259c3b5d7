package database

import (
	"context"
	"testing"

	"wouldyourather/internal/config"
	"wouldyourather/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:                 DriverPostgres,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)

	cfg.DBDriver = DriverSQLite
	require.NoError(t, configurePool(db, cfg))
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:app.db?_foreign_keys=on&_busy_timeout=5000", SQLiteDSN("app.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "file:y?_foreign_keys=on", SQLiteDSN("file:y?_foreign_keys=on"))
}

func TestDialector(t *testing.T) {
	_, err := Dialector(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)

	d, err := Dialector(&config.Config{DBDriver: "SQLite", DBSQLitePath: "test.db"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(&config.Config{DBDriver: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"postgres hybrid dev", config.Config{DBDriver: "postgres", Env: "development"}, true, true, false},
		{"postgres hybrid prod", config.Config{DBDriver: "postgres", Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"postgres sql", config.Config{DBDriver: "postgres", DBSchemaMode: "sql"}, true, false, false},
		{"postgres auto prod refused", config.Config{DBDriver: "postgres", Env: "prod", DBSchemaMode: "auto"}, false, false, true},
		{"postgres auto prod allowed", config.Config{DBDriver: "postgres", Env: "prod", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"sqlite hybrid", config.Config{DBDriver: "sqlite", DBSchemaMode: "hybrid"}, false, true, false},
		{"sqlite sql refused", config.Config{DBDriver: "sqlite", DBSchemaMode: "sql"}, false, false, true},
		{"unknown mode", config.Config{DBDriver: "postgres", DBSchemaMode: "magic"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestApplySchema_SQLiteCascades(t *testing.T) {
	db, err := Open(sqlite.Open(SQLiteDSN("file:schema_test?mode=memory&cache=shared")))
	require.NoError(t, err)
	cfg := &config.Config{DBDriver: DriverSQLite, Env: "test"}
	require.NoError(t, configurePool(db, cfg))
	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	author := models.User{Username: "alex", Email: "alex@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&author).Error)
	voter := models.User{Username: "bob", Email: "bob@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&voter).Error)
	q := models.Question{AuthorID: author.ID, OptionOneText: "fly", OptionTwoText: "swim"}
	require.NoError(t, db.Create(&q).Error)
	require.NoError(t, db.Create(&models.Answer{UserID: voter.ID, QuestionID: q.ID, OptionSelected: models.OptionOne}).Error)

	dup := db.Create(&models.Answer{UserID: voter.ID, QuestionID: q.ID, OptionSelected: models.OptionTwo}).Error
	assert.Error(t, dup)

	require.NoError(t, db.Delete(&models.User{}, author.ID).Error)

	var questions, answers int64
	db.Model(&models.Question{}).Count(&questions)
	db.Model(&models.Answer{}).Count(&answers)
	assert.Zero(t, questions)
	assert.Zero(t, answers)
}

func TestGetSchemaStatus_SQLite(t *testing.T) {
	db, err := Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	status, err := GetSchemaStatus(context.Background(), db, &config.Config{DBDriver: DriverSQLite, Env: "development"})
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Equal(t, SchemaModeHybrid, status.Mode)
}
