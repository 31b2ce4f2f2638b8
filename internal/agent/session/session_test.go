package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proposal-review/advisor/internal/agent/dataset"
	"github.com/proposal-review/advisor/internal/agent/model"
)

type sentRequest struct {
	prior         []model.ConversationTurn
	text          string
	systemContext string
}

// fakeAssistant replies "re: <text>". With a gate, every call blocks until a
// token is sent or its context ends.
type fakeAssistant struct {
	mu        sync.Mutex
	gate      chan struct{}
	err       error
	delays    map[string]time.Duration
	requests  []sentRequest
	cancelled int
}

func (f *fakeAssistant) Send(ctx context.Context, prior []model.ConversationTurn, text, systemContext string) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, sentRequest{prior: prior, text: text, systemContext: systemContext})
	gate, err, delay := f.gate, f.err, f.delays[text]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			f.mu.Lock()
			f.cancelled++
			f.mu.Unlock()
			return "", ctx.Err()
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return "", err
	}
	return "re: " + text, nil
}

func (f *fakeAssistant) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeAssistant) sent() []sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeAssistant) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

var testConfig = model.SessionConfig{RequestTimeout: 5 * time.Second, HistoryWarnTurns: 40}

func newTestSession(t *testing.T, a Assistant, open bool) (*Session, *dataset.Dataset) {
	t.Helper()
	ds := dataset.New(dataset.Seed(), nil)
	s := New("test", a, ds, testConfig, open)
	t.Cleanup(s.Close)
	return s, ds
}

func waitIdle(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func userTurns(turns []model.ConversationTurn) []string {
	var out []string
	for _, t := range turns {
		if t.Role == model.RoleUser {
			out = append(out, t.Text)
		}
	}
	return out
}

func TestDispatchSingleFlight(t *testing.T) {
	fa := &fakeAssistant{gate: make(chan struct{})}
	s, _ := newTestSession(t, fa, true)

	require.True(t, s.Dispatch("first"))
	assert.Equal(t, AwaitingReply, s.State())
	for _, text := range []string{"second", "third", "fourth"} {
		assert.False(t, s.Dispatch(text))
	}
	assert.Equal(t, []model.ConversationTurn{model.UserTurn("first")}, s.Transcript())

	fa.gate <- struct{}{}
	waitIdle(t, s)

	assert.Equal(t, Idle, s.State())
	assert.Equal(t, []model.ConversationTurn{
		model.UserTurn("first"),
		model.AssistantTurn("re: first"),
	}, s.Transcript())
	assert.Len(t, fa.sent(), 1)
}

func TestDispatchIgnoresBlankText(t *testing.T) {
	fa := &fakeAssistant{}
	s, _ := newTestSession(t, fa, true)

	assert.False(t, s.Dispatch(""))
	assert.False(t, s.Dispatch("  \n\t"))
	assert.Empty(t, s.Transcript())
	assert.Empty(t, fa.sent())
}

func TestDispatchSendsPriorTranscript(t *testing.T) {
	fa := &fakeAssistant{}
	s, _ := newTestSession(t, fa, true)

	require.True(t, s.Dispatch("q1"))
	waitIdle(t, s)
	require.True(t, s.Dispatch("q2"))
	waitIdle(t, s)

	sent := fa.sent()
	require.Len(t, sent, 2)
	assert.Empty(t, sent[0].prior)
	assert.Equal(t, "q2", sent[1].text)
	assert.Equal(t, []model.ConversationTurn{
		model.UserTurn("q1"),
		model.AssistantTurn("re: q1"),
	}, sent[1].prior)
}

func TestTriggerExternalOneShot(t *testing.T) {
	fa := &fakeAssistant{}
	s, _ := newTestSession(t, fa, true)

	assert.True(t, s.TriggerExternal("X"))
	waitIdle(t, s)
	assert.False(t, s.TriggerExternal("X"))
	waitIdle(t, s)

	assert.Equal(t, []string{"X"}, userTurns(s.Transcript()))
}

func TestTriggerExternalRepeatsAfterDifferentValue(t *testing.T) {
	fa := &fakeAssistant{}
	s, _ := newTestSession(t, fa, true)

	for _, p := range []string{"X", "Y", "X"} {
		assert.True(t, s.TriggerExternal(p))
		waitIdle(t, s)
	}

	assert.Equal(t, []string{"X", "Y", "X"}, userTurns(s.Transcript()))
	assert.Equal(t, "X", s.Snapshot().LastTrigger)
}

func TestTriggerExternalIgnoresEmpty(t *testing.T) {
	fa := &fakeAssistant{}
	s, _ := newTestSession(t, fa, true)

	assert.False(t, s.TriggerExternal(""))
	assert.Empty(t, s.Transcript())
}

func TestTriggerExternalHeldUntilOpen(t *testing.T) {
	fa := &fakeAssistant{}
	s, _ := newTestSession(t, fa, false)

	assert.False(t, s.TriggerExternal("X"))
	assert.Empty(t, s.Transcript())

	s.SetOpen(true)
	waitIdle(t, s)
	assert.Equal(t, []string{"X"}, userTurns(s.Transcript()))

	// Reopening does not fire the consumed value again.
	s.SetOpen(false)
	s.SetOpen(true)
	waitIdle(t, s)
	assert.Equal(t, []string{"X"}, userTurns(s.Transcript()))
}

func TestTriggerExternalHeldWhileAwaitingReply(t *testing.T) {
	fa := &fakeAssistant{gate: make(chan struct{})}
	s, _ := newTestSession(t, fa, true)

	require.True(t, s.Dispatch("a"))
	assert.False(t, s.TriggerExternal("X"))
	assert.Len(t, s.Transcript(), 1)

	fa.gate <- struct{}{}
	fa.gate <- struct{}{}
	waitIdle(t, s)

	assert.Equal(t, []model.ConversationTurn{
		model.UserTurn("a"),
		model.AssistantTurn("re: a"),
		model.UserTurn("X"),
		model.AssistantTurn("re: X"),
	}, s.Transcript())
}

func TestContextReflectsLatestDataset(t *testing.T) {
	fa := &fakeAssistant{}
	s, ds := newTestSession(t, fa, true)

	rec := ds.Records()[0]
	oldPros := strings.Join(rec.Pros, "; ")

	require.True(t, s.Dispatch("q1"))
	waitIdle(t, s)

	rec.Pros = []string{"Freshly edited strength", "Another new point"}
	require.True(t, ds.ReplaceRecord(rec))

	require.True(t, s.Dispatch("q2"))
	waitIdle(t, s)

	sent := fa.sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].systemContext, oldPros)
	assert.Contains(t, sent[1].systemContext, "Freshly edited strength; Another new point")
	assert.NotContains(t, sent[1].systemContext, oldPros)
}

func TestTranscriptOrderWithDelayedReplies(t *testing.T) {
	fa := &fakeAssistant{delays: map[string]time.Duration{
		"one":   30 * time.Millisecond,
		"two":   1 * time.Millisecond,
		"three": 15 * time.Millisecond,
	}}
	s, _ := newTestSession(t, fa, true)

	for _, q := range []string{"one", "two", "three"} {
		require.True(t, s.Dispatch(q))
		for _, other := range []string{"one", "two", "three"} {
			assert.False(t, s.Dispatch(other))
		}
		waitIdle(t, s)
	}

	assert.Equal(t, []model.ConversationTurn{
		model.UserTurn("one"),
		model.AssistantTurn("re: one"),
		model.UserTurn("two"),
		model.AssistantTurn("re: two"),
		model.UserTurn("three"),
		model.AssistantTurn("re: three"),
	}, s.Transcript())
}

func TestFailureRecovery(t *testing.T) {
	fa := &fakeAssistant{err: errors.New("quota")}
	s, _ := newTestSession(t, fa, true)

	require.True(t, s.Dispatch("q1"))
	waitIdle(t, s)

	turns := s.Transcript()
	require.Len(t, turns, 2)
	assert.Equal(t, model.AssistantTurn(model.ErrorReply), turns[1])
	assert.Equal(t, Idle, s.State())

	fa.setErr(nil)
	require.True(t, s.Dispatch("q2"))
	waitIdle(t, s)
	turns = s.Transcript()
	require.Len(t, turns, 4)
	assert.Equal(t, model.AssistantTurn("re: q2"), turns[3])
}

func TestRequestTimeoutBecomesErrorTurn(t *testing.T) {
	fa := &fakeAssistant{gate: make(chan struct{})}
	ds := dataset.New(dataset.Seed(), nil)
	s := New("timeout", fa, ds, model.SessionConfig{RequestTimeout: 20 * time.Millisecond}, true)
	defer s.Close()

	require.True(t, s.Dispatch("slow"))
	waitIdle(t, s)

	assert.Equal(t, []model.ConversationTurn{
		model.UserTurn("slow"),
		model.AssistantTurn(model.ErrorReply),
	}, s.Transcript())
	assert.Equal(t, Idle, s.State())
}

func TestCloseDropsLateReply(t *testing.T) {
	fa := &fakeAssistant{gate: make(chan struct{})}
	s, _ := newTestSession(t, fa, true)

	require.True(t, s.Dispatch("q"))
	s.Close()
	waitIdle(t, s)

	assert.Eventually(t, func() bool { return fa.cancelCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []model.ConversationTurn{model.UserTurn("q")}, s.Transcript())
	assert.True(t, s.Snapshot().Closed)
	assert.False(t, s.Dispatch("again"))
	assert.False(t, s.TriggerExternal("X"))

	// Close is idempotent.
	s.Close()
}

func TestSubscribeReceivesChanges(t *testing.T) {
	fa := &fakeAssistant{gate: make(chan struct{})}
	s, _ := newTestSession(t, fa, true)

	var mu sync.Mutex
	var got []Snapshot
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(got)
	}
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		got = append(got, snap)
		mu.Unlock()
	})

	require.True(t, s.Dispatch("q"))
	require.Equal(t, 1, count())

	fa.gate <- struct{}{}
	waitIdle(t, s)
	assert.Eventually(t, func() bool { return count() == 2 }, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, AwaitingReply, got[0].State)
	assert.Len(t, got[0].Transcript, 1)
	assert.Equal(t, Idle, got[1].State)
	assert.Len(t, got[1].Transcript, 2)
	mu.Unlock()

	unsubscribe()
	s.SetOpen(false)
	assert.Equal(t, 2, count())
}

func TestWaitHonoursContext(t *testing.T) {
	fa := &fakeAssistant{gate: make(chan struct{})}
	s, _ := newTestSession(t, fa, true)

	require.True(t, s.Dispatch("q"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)

	fa.gate <- struct{}{}
	waitIdle(t, s)
}

func TestGrowthWarningOnce(t *testing.T) {
	fa := &fakeAssistant{}
	ds := dataset.New(dataset.Seed(), nil)
	s := New("grow", fa, ds, model.SessionConfig{HistoryWarnTurns: 2}, true)
	defer s.Close()

	require.True(t, s.Dispatch("q1"))
	waitIdle(t, s)
	assert.False(t, warned(s))

	require.True(t, s.Dispatch("q2"))
	waitIdle(t, s)
	assert.True(t, warned(s))
}

func warned(s *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warned
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "awaiting_reply", AwaitingReply.String())
	b, err := AwaitingReply.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "awaiting_reply", string(b))
}

func TestStateUnmarshalText(t *testing.T) {
	var s State
	require.NoError(t, s.UnmarshalText([]byte("awaiting_reply")))
	assert.Equal(t, AwaitingReply, s)
	assert.Error(t, s.UnmarshalText([]byte("bogus")))
}
