package assistant

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/proposal-review/advisor/internal/agent/model"
	"github.com/proposal-review/advisor/internal/agent/observers"
	errx "github.com/proposal-review/advisor/internal/core/error"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

type sessionIDKey struct{}

// ContextWithSessionID tags ctx so adapter logs can be correlated with a session.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

// Adapter sends one question plus the prior transcript to the chat model and
// returns its text reply. It keeps no state between calls.
type Adapter struct {
	runnable  compose.Runnable[Request, *schema.Message]
	modelName string
}

// NewAdapter compiles the assistant graph around cm.
func NewAdapter(ctx context.Context, cm einomodel.BaseChatModel, modelName string, promptCfg model.PromptConfig) (*Adapter, error) {
	if cm == nil {
		return nil, fmt.Errorf("chat model is nil")
	}

	g := compose.NewGraph[Request, *schema.Message](
		compose.WithGenLocalState(func(ctx context.Context) *callState {
			return &callState{}
		}),
	)

	if err := g.AddLambdaNode(NodeInputConverter,
		newInputConverterNode(promptCfg),
		compose.WithStatePreHandler(newInputConverterPreHandler()),
	); err != nil {
		return nil, fmt.Errorf("add input converter node: %w", err)
	}
	if err := g.AddChatModelNode(NodeChatModel, cm,
		compose.WithStatePostHandler(newChatModelPostHandler(modelName)),
	); err != nil {
		return nil, fmt.Errorf("add chat model node: %w", err)
	}

	edges := [][2]string{
		{compose.START, NodeInputConverter},
		{NodeInputConverter, NodeChatModel},
		{NodeChatModel, compose.END},
	}
	for _, edge := range edges {
		if err := g.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}

	runnable, err := g.Compile(ctx, compose.WithGraphName("assistant"))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling assistant graph")
		return nil, fmt.Errorf("error compiling assistant graph: %w", err)
	}

	logx.Debug().Str("model", modelName).Msg("Assistant graph compiled successfully")
	return &Adapter{runnable: runnable, modelName: modelName}, nil
}

// Send asks the model about text given the prior transcript and the serialized
// dataset. Any failure is reported as ErrAssistantUnavailable; an empty reply
// becomes model.FallbackReply.
func (a *Adapter) Send(ctx context.Context, prior []model.ConversationTurn, text, systemContext string) (string, error) {
	sessionID := sessionIDFrom(ctx)
	out, err := a.runnable.Invoke(ctx, Request{
		SessionID:     sessionID,
		Prior:         model.CloneTurns(prior),
		Text:          text,
		SystemContext: systemContext,
	}, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Str("model", a.modelName).Msg("Assistant call failed")
		return "", errx.WrapAssistant(err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		logx.Debug().Str("session_id", sessionID).Msg("Empty assistant reply - using fallback")
		return model.FallbackReply, nil
	}
	return out.Content, nil
}
