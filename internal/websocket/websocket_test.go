package websocket

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/contestvote/internal/logger"
	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/services"
)

// fakeContests implements ContestSource for testing
type fakeContests struct {
	mu       sync.Mutex
	syncs    int
	syncErr  error
	activate []string
}

func (f *fakeContests) ContestPhase(ctx context.Context, id string, now time.Time) (*services.ContestDetails, error) {
	if id == "missing" {
		return nil, services.ErrContestNotFound
	}
	return &services.ContestDetails{Contest: models.Contest{ID: id, Status: models.ContestStatusActive}}, nil
}

func (f *fakeContests) SyncStatuses(ctx context.Context, now time.Time) (*services.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return &services.SyncResult{Activated: f.activate, Ended: []string{}}, nil
}

func (f *fakeContests) syncCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncs
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := New(logger.Discard(), &fakeContests{})
	hub.Start(ctx)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

func TestHub_BroadcastVote(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "")
	waitForClients(t, hub, 1)

	hub.BroadcastVote("c1", "s1", 3)

	msg := readMessage(t, conn)
	if msg["type"] != TypeVoteRecorded {
		t.Fatalf("expected %s, got %v", TypeVoteRecorded, msg["type"])
	}
	payload := msg["payload"].(map[string]interface{})
	if payload["submission_id"] != "s1" || payload["votes_count"] != float64(3) {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestHub_ContestSubscription(t *testing.T) {
	hub, srv := startHub(t)
	c1 := dial(t, srv, "?contest=c1")
	all := dial(t, srv, "")
	waitForClients(t, hub, 2)

	// Subscribers are greeted with the contest phase
	greeting := readMessage(t, c1)
	if greeting["type"] != TypeContestPhase {
		t.Fatalf("expected %s greeting, got %v", TypeContestPhase, greeting["type"])
	}

	hub.BroadcastContestStatus("c2", models.ContestStatusEnded)
	hub.BroadcastContestStatus("c1", models.ContestStatusActive)

	// The unfiltered client sees both, in order
	first := readMessage(t, all)
	second := readMessage(t, all)
	if first["payload"].(map[string]interface{})["contest_id"] != "c2" ||
		second["payload"].(map[string]interface{})["contest_id"] != "c1" {
		t.Errorf("unexpected order: %v then %v", first, second)
	}

	// The c1 subscriber only sees c1
	msg := readMessage(t, c1)
	payload := msg["payload"].(map[string]interface{})
	if msg["type"] != TypeContestStatus || payload["contest_id"] != "c1" || payload["status"] != "active" {
		t.Errorf("unexpected message for c1 subscriber: %v", msg)
	}
}

func TestHub_UnknownContestGetsNoGreeting(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "?contest=missing")
	waitForClients(t, hub, 1)

	hub.BroadcastVote("missing", "s1", 1)
	if msg := readMessage(t, conn); msg["type"] != TypeVoteRecorded {
		t.Errorf("expected first message to be the vote, got %v", msg["type"])
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "")
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	// Hub loop not started: the queue fills and further messages are dropped
	hub := New(logger.Discard(), &fakeContests{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*2; i++ {
			hub.BroadcastVote("c1", "s1", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastVote blocked")
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := New(logger.Discard(), &fakeContests{})
	hub.Start(ctx)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer srv.Close()

	conn := dial(t, srv, "")
	waitForClients(t, hub, 1)

	cancel()
	waitForClients(t, hub, 0)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to be closed after hub stop")
	}
}

func TestStartStatusSync(t *testing.T) {
	contests := &fakeContests{activate: []string{"c1"}}
	hub := New(logger.Discard(), contests)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.StartStatusSync(ctx, 10*time.Millisecond)
		close(stopped)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for contests.syncCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected repeated syncs, got %d", contests.syncCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("status sync did not stop when context was cancelled")
	}
}

func TestStartStatusSync_ErrorKeepsRunning(t *testing.T) {
	contests := &fakeContests{syncErr: stderrors.New("database error")}
	hub := New(logger.Discard(), contests)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	hub.StartStatusSync(ctx, 10*time.Millisecond)

	if contests.syncCount() < 2 {
		t.Errorf("expected sync to keep retrying, got %d calls", contests.syncCount())
	}
}
