package repository

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository. Transactions are opened with BEGIN
// IMMEDIATE so the vote transaction holds the write lock from its first read.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", withTxLock(dbPath))
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

func withTxLock(dsn string) string {
	if strings.Contains(dsn, "_txlock=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_txlock=immediate&_busy_timeout=5000"
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS contests (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'draft',
			start_at DATETIME NOT NULL,
			submission_end_at DATETIME NOT NULL,
			voting_start_at DATETIME NOT NULL,
			voting_end_at DATETIME NOT NULL,
			custom_submission_deadline BOOLEAN DEFAULT 0,
			config TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			contest_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			title TEXT,
			media_url TEXT,
			media_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			votes_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (contest_id) REFERENCES contests(id)
		)`,
		`CREATE TABLE IF NOT EXISTS votes (
			id TEXT PRIMARY KEY,
			voter_id TEXT NOT NULL,
			submission_id TEXT NOT NULL,
			contest_id TEXT NOT NULL,
			cast_at DATETIME NOT NULL,
			FOREIGN KEY (submission_id) REFERENCES submissions(id),
			FOREIGN KEY (contest_id) REFERENCES contests(id),
			UNIQUE(voter_id, submission_id)
		)`,
		`CREATE TABLE IF NOT EXISTS entitlement_states (
			voter_id TEXT NOT NULL,
			contest_id TEXT NOT NULL,
			period_window_start DATETIME NOT NULL,
			votes_in_current_period INTEGER NOT NULL DEFAULT 0,
			lifetime_votes_used INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (voter_id, contest_id),
			FOREIGN KEY (contest_id) REFERENCES contests(id)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contests_status ON contests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_contest ON submissions(contest_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(contest_id, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_contest_voter ON votes(contest_id, voter_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// Note: base_url is intentionally not set here - it's set by app.go on startup
	defaultSettings := map[string]string{
		"payout_url": "",
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Stats Methods ====================

// ContestStats summarises activity in one contest
type ContestStats struct {
	Submissions         int `json:"submissions"`
	ApprovedSubmissions int `json:"approved_submissions"`
	Votes               int `json:"votes"`
	Voters              int `json:"voters"`
}

// GetContestStats returns submission and vote counts for a contest
func (r *Repository) GetContestStats(ctx context.Context, contestID string) (*ContestStats, error) {
	var stats ContestStats

	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0)
		FROM submissions WHERE contest_id = ?
	`, contestID).Scan(&stats.Submissions, &stats.ApprovedSubmissions); err != nil {
		return nil, err
	}

	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT voter_id) FROM votes WHERE contest_id = ?
	`, contestID).Scan(&stats.Votes, &stats.Voters); err != nil {
		return nil, err
	}

	return &stats, nil
}
