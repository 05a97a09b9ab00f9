package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/abrezinsky/contestvote/internal/models"
)

const contestColumns = `id, title, description, status, start_at, submission_end_at,
	voting_start_at, voting_end_at, custom_submission_deadline, config, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContest(row rowScanner) (*models.Contest, error) {
	var c models.Contest
	var description sql.NullString
	var status, config string
	if err := row.Scan(&c.ID, &c.Title, &description, &status, &c.StartAt, &c.SubmissionEndAt,
		&c.VotingStartAt, &c.VotingEndAt, &c.CustomSubmissionDeadline, &config, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Description = description.String
	c.Status = models.ContestStatus(status)
	if err := json.Unmarshal([]byte(config), &c.Config); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateContest inserts a new contest
func (r *Repository) CreateContest(ctx context.Context, c models.Contest) error {
	config, err := json.Marshal(c.Config)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO contests (`+contestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Title, c.Description, string(c.Status), c.StartAt.UTC(), c.SubmissionEndAt.UTC(),
		c.VotingStartAt.UTC(), c.VotingEndAt.UTC(), c.CustomSubmissionDeadline, string(config),
		c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	return err
}

// UpdateContest replaces the editable fields of a contest. Status is
// changed only through SetContestStatus.
func (r *Repository) UpdateContest(ctx context.Context, c models.Contest) error {
	config, err := json.Marshal(c.Config)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE contests SET title = ?, description = ?, start_at = ?, submission_end_at = ?,
			voting_start_at = ?, voting_end_at = ?, custom_submission_deadline = ?, config = ?, updated_at = ?
		WHERE id = ?
	`, c.Title, c.Description, c.StartAt.UTC(), c.SubmissionEndAt.UTC(), c.VotingStartAt.UTC(),
		c.VotingEndAt.UTC(), c.CustomSubmissionDeadline, string(config), c.UpdatedAt.UTC(), c.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetContest retrieves a contest by ID
func (r *Repository) GetContest(ctx context.Context, id string) (*models.Contest, error) {
	c, err := scanContest(r.db.QueryRowContext(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return c, err
}

// ListContests returns contests newest first, optionally filtered by status
func (r *Repository) ListContests(ctx context.Context, status models.ContestStatus) ([]models.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contests := []models.Contest{}
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, err
		}
		contests = append(contests, *c)
	}
	return contests, rows.Err()
}

// SetContestStatus moves a contest from one status to another. It reports
// false when the contest is missing or no longer in status from.
func (r *Repository) SetContestStatus(ctx context.Context, id string, from, to models.ContestStatus, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contests SET status = ?, updated_at = ? WHERE id = ? AND status = ?
	`, string(to), at.UTC(), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
