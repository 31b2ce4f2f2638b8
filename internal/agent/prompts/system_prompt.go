package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/proposal-review/advisor/internal/agent/model"
)

//go:embed template/system_prompt.txt
var reviewerSystemPrompt string

// RenderSystemInstruction renders the reviewer persona around the dataset
// briefing via the Eino prompt component, which also triggers prompt callbacks.
func RenderSystemInstruction(ctx context.Context, config model.PromptConfig, briefing string) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(reviewerSystemPrompt),
	)
	vars := map[string]any{
		"ProgramName": config.ProgramName,
		"Focus":       config.Focus,
		"Briefing":    strings.TrimRight(briefing, "\n"),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
