package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/proposal-review/advisor/internal/agent/assistant"
	"github.com/proposal-review/advisor/internal/agent/briefing"
	"github.com/proposal-review/advisor/internal/agent/model"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

// Assistant answers one question given the prior transcript and the
// serialized dataset.
type Assistant interface {
	Send(ctx context.Context, prior []model.ConversationTurn, text, systemContext string) (string, error)
}

// RecordSource yields the current candidate records. It is read on every
// dispatch so replies always see the latest edits.
type RecordSource interface {
	Records() []model.CandidateRecord
}

// Listener is called after every visible change with a copy of the session.
type Listener func(Snapshot)

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID          string                   `json:"id"`
	State       State                    `json:"state"`
	Open        bool                     `json:"open"`
	Closed      bool                     `json:"closed"`
	Transcript  []model.ConversationTurn `json:"transcript"`
	LastTrigger string                   `json:"last_trigger,omitempty"`
}

// Session owns one conversation transcript and enforces that at most one
// assistant request is outstanding at a time.
type Session struct {
	id        string
	assistant Assistant
	records   RecordSource
	cfg       model.SessionConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	open       bool
	closed     bool
	transcript []model.ConversationTurn
	requested  string
	consumed   string
	idle       chan struct{}
	warned     bool
	listeners  map[int]Listener
	nextListen int
}

// New creates an idle session. open sets the initial visibility of the chat
// surface, which gates external triggers.
func New(id string, a Assistant, records RecordSource, cfg model.SessionConfig, open bool) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)
	return &Session{
		id:        id,
		assistant: a,
		records:   records,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		open:      open,
		idle:      idle,
		listeners: make(map[int]Listener),
	}
}

func (s *Session) ID() string { return s.id }

// Dispatch submits a user question. It returns false when text is blank, a
// reply is still pending, or the session is closed; rejected text is not queued.
func (s *Session) Dispatch(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	s.mu.Lock()
	ok := s.startLocked(text)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if !ok {
		logx.Debug().Str("session_id", s.id).Msg("Dispatch rejected - reply pending or session closed")
		return false
	}
	s.notify(snap)
	return true
}

// TriggerExternal submits prompt on behalf of another surface. Each distinct
// value fires at most once, and only while the surface is open. A value that
// cannot fire yet is held and retried when the session becomes idle or is opened.
func (s *Session) TriggerExternal(prompt string) bool {
	s.mu.Lock()
	s.requested = prompt
	fired := s.evaluateTriggerLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if fired {
		s.notify(snap)
	}
	return fired
}

// SetOpen records chat surface visibility. Opening may fire a held trigger.
func (s *Session) SetOpen(open bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.open = open
	if open {
		s.evaluateTriggerLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Transcript() []model.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneTurns(s.transcript)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Wait blocks until the session is idle or closed.
func (s *Session) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.state == Idle || s.closed {
			s.mu.Unlock()
			return nil
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close tears the session down. An in-flight request is cancelled and its
// completion, if it still arrives, is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.open = false
	if s.state == AwaitingReply {
		close(s.idle)
	}
	s.listeners = make(map[int]Listener)
	s.mu.Unlock()

	s.cancel()
	logx.Debug().Str("session_id", s.id).Msg("Session closed")
}

// startLocked appends the user turn and launches the assistant call.
func (s *Session) startLocked(text string) bool {
	if s.closed || s.state != Idle {
		return false
	}

	prior := model.CloneTurns(s.transcript)
	systemContext := briefing.Serialize(s.records.Records())

	s.transcript = append(s.transcript, model.UserTurn(text))
	s.state = AwaitingReply
	s.idle = make(chan struct{})
	s.checkGrowthLocked()

	go s.await(prior, text, systemContext)
	return true
}

// evaluateTriggerLocked fires the held external prompt when every gate allows it.
func (s *Session) evaluateTriggerLocked() bool {
	if s.requested == "" || s.requested == s.consumed {
		return false
	}
	if !s.open || s.closed || s.state != Idle {
		return false
	}
	s.consumed = s.requested
	logx.Debug().Str("session_id", s.id).Str("prompt", s.requested).Msg("External trigger fired")
	return s.startLocked(s.requested)
}

func (s *Session) await(prior []model.ConversationTurn, text, systemContext string) {
	ctx := assistant.ContextWithSessionID(s.ctx, s.id)
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.assistant.Send(ctx, prior, text, systemContext)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", s.id).Dur("elapsed", time.Since(start)).Msg("Assistant request failed")
		reply = model.ErrorReply
	}
	s.complete(reply)
}

func (s *Session) complete(reply string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		logx.Debug().Str("session_id", s.id).Msg("Dropping reply for closed session")
		return
	}
	s.transcript = append(s.transcript, model.AssistantTurn(reply))
	s.state = Idle
	close(s.idle)
	s.checkGrowthLocked()
	s.evaluateTriggerLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// checkGrowthLocked warns once when the transcript resent on every turn gets long.
func (s *Session) checkGrowthLocked() {
	limit := s.cfg.HistoryWarnTurns
	if limit <= 0 || s.warned || len(s.transcript) <= limit {
		return
	}
	s.warned = true
	logx.Warn().
		Str("session_id", s.id).
		Int("turns", len(s.transcript)).
		Int("warn_turns", limit).
		Msg("Transcript is resent in full every turn and keeps growing")
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:          s.id,
		State:       s.state,
		Open:        s.open,
		Closed:      s.closed,
		Transcript:  model.CloneTurns(s.transcript),
		LastTrigger: s.consumed,
	}
}

func (s *Session) notify(snap Snapshot) {
	s.mu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(snap)
	}
}
