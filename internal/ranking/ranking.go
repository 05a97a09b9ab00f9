// Package ranking orders approved submissions within a contest.
//
// Order: votes descending, then earliest CreatedAt, then ID. The ID step
// only matters for submissions created in the same instant and makes the
// ranking a total order.
package ranking

import (
	"sort"

	"github.com/abrezinsky/contestvote/internal/models"
)

// Entry is one ranked submission
type Entry struct {
	Rank       int               `json:"rank"`
	Submission models.Submission `json:"submission"`
}

// Order returns the approved submissions sorted best-first. Input is not modified.
func Order(subs []models.Submission) []models.Submission {
	approved := make([]models.Submission, 0, len(subs))
	for _, s := range subs {
		if s.Status == models.SubmissionApproved {
			approved = append(approved, s)
		}
	}
	sort.Slice(approved, func(i, j int) bool {
		a, b := approved[i], approved[j]
		if a.VotesCount != b.VotesCount {
			return a.VotesCount > b.VotesCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return approved
}

// Rank returns the 1-based rank of submissionID, or false if it is missing
// or not approved.
func Rank(subs []models.Submission, submissionID string) (int, bool) {
	for i, s := range Order(subs) {
		if s.ID == submissionID {
			return i + 1, true
		}
	}
	return 0, false
}

// Standings ranks every approved submission.
func Standings(subs []models.Submission) []Entry {
	ordered := Order(subs)
	entries := make([]Entry, len(ordered))
	for i, s := range ordered {
		entries[i] = Entry{Rank: i + 1, Submission: s}
	}
	return entries
}
