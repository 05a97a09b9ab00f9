package repository

import (
	"context"
	"database/sql"

	"github.com/abrezinsky/contestvote/internal/models"
)

const submissionColumns = `id, contest_id, user_id, title, media_url, media_type, status, votes_count, created_at`

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var s models.Submission
	var title, mediaURL sql.NullString
	var mediaType, status string
	if err := row.Scan(&s.ID, &s.ContestID, &s.UserID, &title, &mediaURL, &mediaType, &status, &s.VotesCount, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Title = title.String
	s.MediaURL = mediaURL.String
	s.MediaType = models.MediaType(mediaType)
	s.Status = models.SubmissionStatus(status)
	return &s, nil
}

// CreateSubmission inserts a new submission
func (r *Repository) CreateSubmission(ctx context.Context, s models.Submission) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.ContestID, s.UserID, s.Title, s.MediaURL, string(s.MediaType), string(s.Status), s.VotesCount, s.CreatedAt.UTC())
	return err
}

// GetSubmission retrieves a submission by ID
func (r *Repository) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return s, err
}

// ListSubmissions returns the submissions of a contest in creation order,
// optionally filtered by status
func (r *Repository) ListSubmissions(ctx context.Context, contestID string, status models.SubmissionStatus) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE contest_id = ?`
	args := []any{contestID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

// CountUserSubmissions counts a user's non-rejected submissions in a contest
func (r *Repository) CountUserSubmissions(ctx context.Context, contestID, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM submissions WHERE contest_id = ? AND user_id = ? AND status != 'rejected'
	`, contestID, userID).Scan(&count)
	return count, err
}

// SetSubmissionStatus records a moderation decision
func (r *Repository) SetSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE submissions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
