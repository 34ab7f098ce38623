package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/interview-prep/internal/types"
)

// MaxHistoryLimit caps history listings.
const MaxHistoryLimit = 100

// SaveArtifact stores a completed artifact. Saving the same id again replaces it.
func (db *DB) SaveArtifact(ctx context.Context, a *types.StoredArtifact) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return &PersistenceError{Op: "save artifact", Cause: fmt.Errorf("invalid artifact id %q: %w", a.ID, err)}
	}
	userID, err := nullableUUID(a.UserID)
	if err != nil {
		return &PersistenceError{Op: "save artifact", Cause: err}
	}
	content, err := json.Marshal(a.Artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO interview_artifacts (id, user_id, job_title, company, job_url, artifact, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   job_title = EXCLUDED.job_title,
		   company = EXCLUDED.company,
		   artifact = EXCLUDED.artifact,
		   expires_at = EXCLUDED.expires_at`,
		id, userID, a.Artifact.JobDetails.Title, a.Artifact.JobDetails.Company, a.JobURL, content, a.CreatedAt, a.ExpiresAt,
	)
	if err != nil {
		return &PersistenceError{Op: "save artifact", Cause: err}
	}
	return nil
}

// GetArtifact returns an unexpired artifact by id, or nil if there is none.
func (db *DB) GetArtifact(ctx context.Context, id string) (*types.StoredArtifact, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	var (
		rec     types.StoredArtifact
		userID  *uuid.UUID
		content []byte
	)
	err = db.pool.QueryRow(ctx,
		`SELECT id, user_id, job_url, artifact, created_at, expires_at
		 FROM interview_artifacts WHERE id = $1 AND expires_at > NOW()`,
		parsed,
	).Scan(&parsed, &userID, &rec.JobURL, &content, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "get artifact", Cause: err}
	}
	rec.ID = parsed.String()
	if userID != nil {
		rec.UserID = userID.String()
	}
	if err := json.Unmarshal(content, &rec.Artifact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}
	return &rec, nil
}

// ListArtifacts returns unexpired artifact summaries, newest first. An empty userID lists every user.
func (db *DB) ListArtifacts(ctx context.Context, userID string, limit int) ([]types.ArtifactSummary, error) {
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	owner, err := nullableUUID(userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list artifacts", Cause: err}
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, job_title, company, created_at, expires_at
		 FROM interview_artifacts
		 WHERE expires_at > NOW() AND ($1::uuid IS NULL OR user_id = $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		owner, limit,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "list artifacts", Cause: err}
	}
	defer rows.Close()

	summaries := []types.ArtifactSummary{}
	for rows.Next() {
		var (
			s  types.ArtifactSummary
			id uuid.UUID
		)
		if err := rows.Scan(&id, &s.JobTitle, &s.Company, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, &PersistenceError{Op: "scan artifact summary", Cause: err}
		}
		s.ID = id.String()
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list artifacts", Cause: err}
	}
	return summaries, nil
}

// DeleteExpired removes every artifact past its expiry and returns how many were deleted.
func (db *DB) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM interview_artifacts WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, &PersistenceError{Op: "delete expired artifacts", Cause: err}
	}
	return tag.RowsAffected(), nil
}

func nullableUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", s, err)
	}
	return &id, nil
}
