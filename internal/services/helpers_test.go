package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/repository"
	"github.com/abrezinsky/contestvote/internal/testutil"
)

var t0 = testutil.T0

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

// recordingBroadcaster captures broadcasts for assertions
type recordingBroadcaster struct {
	mu       sync.Mutex
	votes    []string
	statuses map[string]models.ContestStatus
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{statuses: make(map[string]models.ContestStatus)}
}

func (b *recordingBroadcaster) BroadcastVote(contestID, submissionID string, votesCount int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.votes = append(b.votes, submissionID)
}

func (b *recordingBroadcaster) BroadcastContestStatus(contestID string, status models.ContestStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses[contestID] = status
}

func (b *recordingBroadcaster) voteCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.votes)
}

func (b *recordingBroadcaster) status(contestID string) models.ContestStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.statuses[contestID]
}

// seedActiveContest stores an active week-long contest starting at t0 with
// cfg and returns it.
func seedActiveContest(t *testing.T, repo repository.ContestRepository, id string, cfg models.ContestConfig) models.Contest {
	t.Helper()
	return testutil.SeedContest(t, repo, testutil.ActiveContest(id, cfg))
}

func at(h int) time.Time {
	return t0.Add(time.Duration(h) * time.Hour)
}
