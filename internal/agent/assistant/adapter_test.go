package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proposal-review/advisor/internal/agent/model"
	errx "github.com/proposal-review/advisor/internal/core/error"
)

// fakeChatModel records the messages it receives and replies with a fixed message.
type fakeChatModel struct {
	mu    sync.Mutex
	reply *schema.Message
	err   error
	calls [][]*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) lastCall(t *testing.T) []*schema.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

var testPromptConfig = model.PromptConfig{ProgramName: "Review", Focus: "value"}

func newTestAdapter(t *testing.T, cm *fakeChatModel) *Adapter {
	t.Helper()
	a, err := NewAdapter(context.Background(), cm, "gemini-3-flash-preview", testPromptConfig)
	require.NoError(t, err)
	return a
}

func TestSendBuildsOrderedMessages(t *testing.T) {
	cm := &fakeChatModel{reply: schema.AssistantMessage("answer", nil)}
	a := newTestAdapter(t, cm)

	prior := []model.ConversationTurn{
		model.UserTurn("q1"),
		model.AssistantTurn("a1"),
	}
	reply, err := a.Send(context.Background(), prior, "q2", "=== X (X) ===\n")
	require.NoError(t, err)
	assert.Equal(t, "answer", reply)

	msgs := cm.lastCall(t)
	require.Len(t, msgs, 4)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "=== X (X) ===")
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, "q1", msgs[1].Content)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, "a1", msgs[2].Content)
	assert.Equal(t, schema.User, msgs[3].Role)
	assert.Equal(t, "q2", msgs[3].Content)
}

func TestSendEmptyReplyUsesFallback(t *testing.T) {
	for _, content := range []string{"", "   \n"} {
		cm := &fakeChatModel{reply: schema.AssistantMessage(content, nil)}
		reply, err := newTestAdapter(t, cm).Send(context.Background(), nil, "q", "")
		require.NoError(t, err)
		assert.Equal(t, model.FallbackReply, reply)
	}
}

func TestSendFailureIsAssistantUnavailable(t *testing.T) {
	cm := &fakeChatModel{err: errors.New("quota exceeded")}
	_, err := newTestAdapter(t, cm).Send(context.Background(), nil, "q", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrAssistantUnavailable)
	assert.Equal(t, errx.AssistantErrorMessage, errx.MessageOf(err))
}

func TestSendDoesNotRetainTranscript(t *testing.T) {
	cm := &fakeChatModel{reply: schema.AssistantMessage("ok", nil)}
	a := newTestAdapter(t, cm)

	_, err := a.Send(context.Background(), nil, "first", "")
	require.NoError(t, err)
	_, err = a.Send(context.Background(), nil, "second", "")
	require.NoError(t, err)

	msgs := cm.lastCall(t)
	require.Len(t, msgs, 2)
	assert.Equal(t, "second", msgs[1].Content)
}

func TestSendRecordsUsageCost(t *testing.T) {
	reply := schema.AssistantMessage("priced", nil)
	reply.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{
		PromptTokens:     1_000_000,
		CompletionTokens: 1_000_000,
		TotalTokens:      2_000_000,
	}}
	cm := &fakeChatModel{reply: reply}

	out, err := newTestAdapter(t, cm).Send(ContextWithSessionID(context.Background(), "s1"), nil, "q", "")
	require.NoError(t, err)
	assert.Equal(t, "priced", out)
	require.Contains(t, reply.Extra, "usage_cost")
	cost := reply.Extra["usage_cost"].(map[string]any)
	assert.InDelta(t, 3.50, cost["total_cost"].(float64), 1e-9)
}

func TestNewAdapterRejectsNilModel(t *testing.T) {
	_, err := NewAdapter(context.Background(), nil, "m", testPromptConfig)
	assert.Error(t, err)
}

func TestSessionIDContext(t *testing.T) {
	assert.Equal(t, "", sessionIDFrom(context.Background()))
	assert.Equal(t, "abc", sessionIDFrom(ContextWithSessionID(context.Background(), "abc")))
}
