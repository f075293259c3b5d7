package database

import (
	"testing"

	"wouldyourather/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistentModels_ReferencedTablesFirst(t *testing.T) {
	registered := PersistentModels()
	require.Len(t, registered, 3)

	_, isUser := registered[0].(*models.User)
	_, isQuestion := registered[1].(*models.Question)
	_, isAnswer := registered[2].(*models.Answer)
	assert.True(t, isUser)
	assert.True(t, isQuestion)
	assert.True(t, isAnswer)
}

func TestMigrationsRegistered(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "000001_init_schema", all[0].String())
	assert.Contains(t, all[0].UpScript, "idx_answers_user_question")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS answers")

	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}
