package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrdered(t *testing.T) {
	files, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.Equal(t, "000_create_schema_migrations.sql", files[0])
	assert.Contains(t, files, "001_interview_artifacts.sql")
	assert.Contains(t, files, "002_user_responses.sql")
	assert.IsIncreasing(t, files)
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&PersistenceError{Op: "save artifact", Cause: cause})

	assert.Equal(t, "persistence error during save artifact: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	var pe *PersistenceError
	assert.True(t, errors.As(err, &pe))
}

func TestNullableUUID(t *testing.T) {
	id, err := nullableUUID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = nullableUUID("7b1c0a8e-3f0b-4a43-9d53-6b1a0f6f2c11")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "7b1c0a8e-3f0b-4a43-9d53-6b1a0f6f2c11", id.String())

	_, err = nullableUUID("not-a-uuid")
	assert.Error(t, err)
}
