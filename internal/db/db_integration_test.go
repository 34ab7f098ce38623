//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-prep/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if _, err := db.Migrate(ctx, nil); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func testArtifact(userID string, createdAt, expiresAt time.Time) *types.StoredArtifact {
	return &types.StoredArtifact{
		ID:     uuid.NewString(),
		UserID: userID,
		JobURL: "https://jobs.test.example.com/1",
		Artifact: types.Artifact{
			JobDetails: types.JobDetails{Company: "Acme Corp", Title: "Engineer"},
			InterviewRounds: []types.InterviewRound{
				{ID: "r-1", Name: "Initial Screen", Questions: []types.InterviewQuestion{{ID: "q-1", Text: "Why Acme?"}}},
			},
		},
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
}

func cleanup(t *testing.T, db *DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, _ = db.pool.Exec(context.Background(), "DELETE FROM interview_artifacts WHERE id = $1", uuid.MustParse(id))
	}
}

func TestIntegration_MigrateIsRepeatable(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	applied, err := db.Migrate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
}

func TestIntegration_Artifacts(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	user := uuid.NewString()

	older := testArtifact(user, now.Add(-2*time.Hour), now.Add(time.Hour))
	newer := testArtifact(user, now.Add(-time.Hour), now.Add(time.Hour))
	expired := testArtifact(user, now.Add(-3*time.Hour), now.Add(-time.Minute))
	defer cleanup(t, db, older.ID, newer.ID, expired.ID)

	for _, a := range []*types.StoredArtifact{older, newer, expired} {
		require.NoError(t, db.SaveArtifact(ctx, a))
	}

	t.Run("get round trips", func(t *testing.T) {
		got, err := db.GetArtifact(ctx, newer.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user, got.UserID)
		assert.Equal(t, "Why Acme?", got.Artifact.InterviewRounds[0].Questions[0].Text)
	})

	t.Run("expired and unknown are nil", func(t *testing.T) {
		got, err := db.GetArtifact(ctx, expired.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = db.GetArtifact(ctx, "not-a-uuid")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("history is newest first without expired", func(t *testing.T) {
		items, err := db.ListArtifacts(ctx, user, 10)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, newer.ID, items[0].ID)
		assert.Equal(t, older.ID, items[1].ID)
		assert.Equal(t, "Acme Corp", items[0].Company)
	})

	t.Run("sweep deletes expired", func(t *testing.T) {
		n, err := db.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))

		items, err := db.ListArtifacts(ctx, user, 10)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}

func TestIntegration_ResponsesUpsert(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	now := time.Now().UTC()

	a := testArtifact("", now, now.Add(time.Hour))
	require.NoError(t, db.SaveArtifact(ctx, a))
	defer cleanup(t, db, a.ID)

	r := types.UserResponse{JobID: a.ID, QuestionID: "q-1", RoundID: "r-1", Situation: "first"}
	_, err := db.UpsertResponse(ctx, r)
	require.NoError(t, err)

	r.Situation = "second"
	r.Result = "shipped"
	saved, err := db.UpsertResponse(ctx, r)
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	list, err := db.ListResponses(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Situation)
	assert.Equal(t, "shipped", list[0].Result)
}
