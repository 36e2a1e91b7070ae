package connection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wabridge/internal/domain/session"
	"wabridge/pkg/clock"
	"wabridge/pkg/logger"
)

type fakeConnector struct {
	mu          sync.Mutex
	reconnects  int
	err         error
	onReconnect func()
}

func (f *fakeConnector) Connect(context.Context) error { return nil }

func (f *fakeConnector) Reconnect(context.Context) error {
	f.mu.Lock()
	f.reconnects++
	err := f.err
	hook := f.onReconnect
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeConnector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reconnects
}

type fakeStore struct {
	resets int
}

func (f *fakeStore) Reset(context.Context) error {
	f.resets++
	return nil
}

type fakeRestarter struct {
	reasons []string
}

func (f *fakeRestarter) Restart(reason string) {
	f.reasons = append(f.reasons, reason)
}

type fakePresence struct {
	calls int
}

func (f *fakePresence) CancelAll() int {
	f.calls++
	return 0
}

type harness struct {
	ctrl      *Controller
	clock     *clock.Fake
	connector *fakeConnector
	store     *fakeStore
	restarter *fakeRestarter
	presence  *fakePresence
	changes   []session.Change
}

func newHarness(t *testing.T, maxAttempts int) *harness {
	t.Helper()
	h := &harness{
		clock:     clock.NewFake(time.Unix(1700000000, 0)),
		connector: &fakeConnector{},
		store:     &fakeStore{},
		restarter: &fakeRestarter{},
		presence:  &fakePresence{},
	}
	cfg := DefaultControllerConfig()
	cfg.MaxAuthAttempts = maxAttempts
	h.ctrl = NewController(cfg, h.connector, h.store, h.restarter, h.presence, h.clock, logger.SetupForTesting())
	h.ctrl.Subscribe(func(c session.Change) { h.changes = append(h.changes, c) })
	return h
}

func (h *harness) escalations() int {
	n := 0
	for _, c := range h.changes {
		if c.Escalated {
			n++
		}
	}
	return n
}

func TestInitialState(t *testing.T) {
	h := newHarness(t, 5)
	snap := h.ctrl.Snapshot()
	if snap.State != session.StateInitializing {
		t.Fatalf("state = %s, want initializing", snap.State)
	}
	if snap.Ready || snap.Authenticated || snap.HasChallenge() {
		t.Fatalf("unexpected initial flags: %+v", snap)
	}
}

func TestChallengeEscalatesOnLimit(t *testing.T) {
	h := newHarness(t, 5)

	for i := 1; i <= 5; i++ {
		h.ctrl.Handle(session.ChallengeIssued("qr-code"))
		if i < 5 && h.escalations() != 0 {
			t.Fatalf("escalated early at challenge %d", i)
		}
	}

	if got := h.escalations(); got != 1 {
		t.Fatalf("escalations = %d, want 1", got)
	}
	if !h.changes[4].Escalated {
		t.Fatalf("escalation should happen on the 5th challenge")
	}
	snap := h.ctrl.Snapshot()
	if snap.AuthAttempts != 5 || snap.Escalations != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.State != session.StateAwaitingChallenge || !snap.HasChallenge() {
		t.Fatalf("challenges must keep being accepted: %+v", snap)
	}
	if h.clock.Waiters() != 0 {
		t.Fatalf("challenge escalation must not schedule timers")
	}
}

func TestAuthenticatedResetsCounter(t *testing.T) {
	h := newHarness(t, 5)
	h.ctrl.Handle(session.ChallengeIssued("a"))
	h.ctrl.Handle(session.ChallengeIssued("b"))
	h.ctrl.Handle(session.Authenticated())

	snap := h.ctrl.Snapshot()
	if snap.AuthAttempts != 0 {
		t.Fatalf("attempts = %d, want 0", snap.AuthAttempts)
	}
	if snap.HasChallenge() {
		t.Fatalf("challenge must be cleared after authentication")
	}
	if snap.State != session.StateAuthenticating || !snap.Authenticated || snap.Ready {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestAuthFailureBelowLimitAwaitsChallenge(t *testing.T) {
	h := newHarness(t, 3)
	h.ctrl.Handle(session.ChallengeIssued("a"))
	h.ctrl.Handle(session.AuthFailed("timeout"))

	snap := h.ctrl.Snapshot()
	if snap.State != session.StateAwaitingChallenge {
		t.Fatalf("state = %s, want awaiting_challenge", snap.State)
	}
	if h.clock.Waiters() != 0 {
		t.Fatalf("no reset expected below limit")
	}
}

func TestAuthFailureAtLimitResetsAndRestarts(t *testing.T) {
	h := newHarness(t, 2)
	h.ctrl.Handle(session.ChallengeIssued("a"))
	h.ctrl.Handle(session.ChallengeIssued("b"))
	h.ctrl.Handle(session.AuthFailed("timeout"))
	h.ctrl.Handle(session.AuthFailed("timeout"))

	snap := h.ctrl.Snapshot()
	if snap.State != session.StateFailed || !snap.ResetPending {
		t.Fatalf("snapshot = %+v", snap)
	}
	if h.clock.Waiters() != 1 {
		t.Fatalf("waiters = %d, want exactly one reset", h.clock.Waiters())
	}

	h.clock.Advance(4999 * time.Millisecond)
	if h.store.resets != 0 || len(h.restarter.reasons) != 0 {
		t.Fatalf("reset ran before 5000ms")
	}

	h.clock.Advance(time.Millisecond)
	if h.store.resets != 1 {
		t.Fatalf("resets = %d, want 1", h.store.resets)
	}
	if len(h.restarter.reasons) != 1 {
		t.Fatalf("restarts = %d, want 1", len(h.restarter.reasons))
	}
	if h.ctrl.Snapshot().ResetPending {
		t.Fatalf("reset should no longer be pending")
	}
}

func TestReadyIsIdempotent(t *testing.T) {
	h := newHarness(t, 5)
	h.ctrl.Handle(session.ChallengeIssued("a"))
	h.ctrl.Handle(session.Authenticated())
	h.ctrl.Handle(session.Ready())
	first := h.ctrl.Snapshot()
	h.ctrl.Handle(session.Ready())
	second := h.ctrl.Snapshot()

	if !second.Ready || !second.Authenticated || second.State != session.StateReady {
		t.Fatalf("snapshot = %+v", second)
	}
	if first.Since != second.Since {
		t.Fatalf("repeated ready must not change the state timestamp")
	}
	if !h.ctrl.IsReady() {
		t.Fatalf("IsReady = false")
	}
}

func TestReadyThenDisconnected(t *testing.T) {
	h := newHarness(t, 5)
	h.ctrl.Handle(session.Authenticated())
	h.ctrl.Handle(session.Ready())
	calls := h.presence.calls

	h.ctrl.Handle(session.Disconnected("network"))

	snap := h.ctrl.Snapshot()
	if snap.Ready || snap.Authenticated {
		t.Fatalf("flags must be cleared: %+v", snap)
	}
	if snap.State != session.StateDisconnected || snap.LastDisconnectReason != "network" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if h.presence.calls != calls+1 {
		t.Fatalf("presence timers must be cancelled on disconnect")
	}
	if !snap.ReconnectPending || h.clock.Waiters() != 1 {
		t.Fatalf("reconnect should be scheduled")
	}

	h.clock.Advance(9999 * time.Millisecond)
	if h.connector.count() != 0 {
		t.Fatalf("reconnect before 10000ms")
	}
	h.clock.Advance(time.Millisecond)
	if h.connector.count() != 1 {
		t.Fatalf("reconnects = %d, want 1", h.connector.count())
	}
	if got := h.ctrl.Snapshot().State; got != session.StateReconnecting {
		t.Fatalf("state = %s, want reconnecting", got)
	}
}

func TestRepeatedDisconnectKeepsSingleReconnect(t *testing.T) {
	h := newHarness(t, 5)
	h.ctrl.Handle(session.Disconnected("a"))
	h.clock.Advance(5 * time.Second)
	h.ctrl.Handle(session.Disconnected("b"))

	if h.clock.Waiters() != 1 {
		t.Fatalf("waiters = %d, want 1", h.clock.Waiters())
	}
	h.clock.Advance(5 * time.Second)
	if h.connector.count() != 0 {
		t.Fatalf("replaced reconnect must not fire")
	}
	h.clock.Advance(5 * time.Second)
	if h.connector.count() != 1 {
		t.Fatalf("reconnects = %d, want 1", h.connector.count())
	}
}

func TestReconnectFailureReschedules(t *testing.T) {
	h := newHarness(t, 5)
	h.connector.err = errors.New("dial failed")
	h.ctrl.Handle(session.Disconnected("network"))

	h.clock.Advance(10 * time.Second)
	if h.connector.count() != 1 {
		t.Fatalf("reconnects = %d, want 1", h.connector.count())
	}
	if !h.ctrl.Snapshot().ReconnectPending {
		t.Fatalf("failed reconnect should schedule another attempt")
	}
	h.clock.Advance(10 * time.Second)
	if h.connector.count() != 2 {
		t.Fatalf("reconnects = %d, want 2", h.connector.count())
	}
}

func TestReconnectReachesReady(t *testing.T) {
	h := newHarness(t, 5)
	h.connector.onReconnect = func() { h.ctrl.Handle(session.Ready()) }
	h.ctrl.Handle(session.Disconnected("network"))

	h.clock.Advance(10 * time.Second)

	snap := h.ctrl.Snapshot()
	if !snap.Ready || snap.State != session.StateReady || snap.ReconnectPending {
		t.Fatalf("snapshot = %+v", snap)
	}
	if h.clock.Waiters() != 0 {
		t.Fatalf("no timers expected once ready")
	}
}

func TestReadyCancelsPendingReconnect(t *testing.T) {
	h := newHarness(t, 5)
	h.ctrl.Handle(session.Disconnected("network"))
	h.ctrl.Handle(session.Ready())

	if h.clock.Waiters() != 0 {
		t.Fatalf("ready must cancel the pending reconnect")
	}
	h.clock.Advance(time.Minute)
	if h.connector.count() != 0 {
		t.Fatalf("reconnect fired after ready")
	}
}

func TestNoReconnectWhileFailed(t *testing.T) {
	h := newHarness(t, 1)
	h.ctrl.Handle(session.ChallengeIssued("a"))
	h.ctrl.Handle(session.AuthFailed("timeout"))
	h.ctrl.Handle(session.Disconnected("closed"))

	if h.ctrl.Snapshot().State != session.StateFailed {
		t.Fatalf("failed state must be kept")
	}
	if h.ctrl.Snapshot().ReconnectPending {
		t.Fatalf("no reconnect while failed")
	}
}

func TestDispatchRunLoop(t *testing.T) {
	h := newHarness(t, 5)
	done := make(chan struct{})
	ready := make(chan struct{}, 1)
	h.ctrl.Subscribe(func(c session.Change) {
		if c.To == session.StateReady {
			ready <- struct{}{}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		h.ctrl.Run(ctx)
		close(done)
	}()

	h.ctrl.Dispatch(session.ChallengeIssued("a"))
	h.ctrl.Dispatch(session.Authenticated())
	h.ctrl.Dispatch(session.Ready())

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("ready not reached")
	}
	cancel()
	<-done

	if !h.ctrl.IsReady() {
		t.Fatalf("IsReady = false")
	}
}
