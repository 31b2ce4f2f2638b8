package assistant

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/proposal-review/advisor/internal/agent/model"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey  string
	BaseURL string
	Model   model.AssistantModelConfig
}

// NewGeminiChatModel creates the Gemini chat model that answers reviewer questions.
func NewGeminiChatModel(ctx context.Context, config ChatModelConfig) (*gemini.ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	modelCfg := config.Model
	geminiCfg := &gemini.Config{
		Client:      client,
		Model:       modelCfg.Model,
		Temperature: &modelCfg.Temperature,
		MaxTokens:   &modelCfg.MaxTokens,
	}
	if modelCfg.ThinkingBudget > 0 {
		geminiCfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(modelCfg.ThinkingBudget),
		}
	}

	cm, err := gemini.NewChatModel(ctx, geminiCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating assistant model")
		return nil, fmt.Errorf("error creating assistant model: %w", err)
	}

	logx.Debug().
		Str("model", modelCfg.Model).
		Int("max_tokens", modelCfg.MaxTokens).
		Float32("temperature", modelCfg.Temperature).
		Msg("Gemini chat model ready")
	return cm, nil
}
