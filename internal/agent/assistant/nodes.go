package assistant

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/proposal-review/advisor/internal/agent/model"
	"github.com/proposal-review/advisor/internal/agent/prompts"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

const (
	NodeInputConverter = "InputConverter"
	NodeChatModel      = "ChatModel"
)

// Request is the graph input for one assistant call.
type Request struct {
	SessionID     string
	Prior         []model.ConversationTurn
	Text          string
	SystemContext string
}

// callState is the per-invocation graph state.
type callState struct {
	SessionID    string
	TotalCostUSD float64
}

func newInputConverterPreHandler() func(context.Context, Request, *callState) (Request, error) {
	return func(ctx context.Context, in Request, s *callState) (Request, error) {
		s.SessionID = in.SessionID
		s.TotalCostUSD = 0
		return in, nil
	}
}

// newInputConverterNode builds the model input: system instruction first,
// then the prior transcript in order, then the new user message last.
func newInputConverterNode(promptCfg model.PromptConfig) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in Request) ([]*schema.Message, error) {
		system, err := prompts.RenderSystemInstruction(ctx, promptCfg, in.SystemContext)
		if err != nil {
			return nil, fmt.Errorf("render system instruction: %w", err)
		}

		messages := make([]*schema.Message, 0, len(in.Prior)+2)
		messages = append(messages, schema.SystemMessage(system))
		messages = append(messages, model.ToMessages(in.Prior)...)
		messages = append(messages, schema.UserMessage(in.Text))
		return messages, nil
	})
}

// newChatModelPostHandler computes and logs usage cost for the assistant model.
func newChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *callState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *callState) (*schema.Message, error) {
		usage, ok := model.UsageFor(modelName, out)
		if !ok {
			return out, nil
		}
		state.TotalCostUSD += usage.TotalCost
		if out.Extra == nil {
			out.Extra = map[string]any{}
		}
		out.Extra["usage_cost"] = map[string]any{
			"currency":          "USD",
			"model":             usage.Model,
			"prompt_tokens":     usage.PromptTokens,
			"completion_tokens": usage.CompletionTokens,
			"total_tokens":      usage.TotalTokens,
			"input_cost":        usage.InputCost,
			"output_cost":       usage.OutputCost,
			"total_cost":        usage.TotalCost,
		}
		logx.Debug().
			Str("session_id", state.SessionID).
			Str("node", NodeChatModel).
			Str("model", usage.Model).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens).
			Float64("input_cost_usd", usage.InputCost).
			Float64("output_cost_usd", usage.OutputCost).
			Float64("total_cost_usd", state.TotalCostUSD).
			Msg("LLM usage")
		return out, nil
	}
}
