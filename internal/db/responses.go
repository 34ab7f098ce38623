package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/interview-prep/internal/types"
)

// UpsertResponse creates or replaces the answer for (job, question, round).
func (db *DB) UpsertResponse(ctx context.Context, r types.UserResponse) (*types.UserResponse, error) {
	jobID, err := uuid.Parse(r.JobID)
	if err != nil {
		return nil, &PersistenceError{Op: "upsert response", Cause: err}
	}

	out := r
	err = db.pool.QueryRow(ctx,
		`INSERT INTO user_responses (job_id, question_id, round_id, situation, action, result, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (job_id, question_id, round_id) DO UPDATE SET
		   situation = EXCLUDED.situation,
		   action = EXCLUDED.action,
		   result = EXCLUDED.result,
		   updated_at = NOW()
		 RETURNING updated_at`,
		jobID, r.QuestionID, r.RoundID, r.Situation, r.Action, r.Result,
	).Scan(&out.UpdatedAt)
	if err != nil {
		return nil, &PersistenceError{Op: "upsert response", Cause: err}
	}
	return &out, nil
}

// ListResponses returns every saved answer for a job, most recently updated first.
func (db *DB) ListResponses(ctx context.Context, jobID string) ([]types.UserResponse, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return []types.UserResponse{}, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT question_id, round_id, situation, action, result, updated_at
		 FROM user_responses WHERE job_id = $1
		 ORDER BY updated_at DESC`,
		id,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "list responses", Cause: err}
	}
	defer rows.Close()

	responses := []types.UserResponse{}
	for rows.Next() {
		r := types.UserResponse{JobID: id.String()}
		if err := rows.Scan(&r.QuestionID, &r.RoundID, &r.Situation, &r.Action, &r.Result, &r.UpdatedAt); err != nil {
			return nil, &PersistenceError{Op: "scan response", Cause: err}
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list responses", Cause: err}
	}
	return responses, nil
}
