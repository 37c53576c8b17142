package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/llm"
)

// Client implements llm.Completer against an OpenAI-compatible chat completions endpoint.
// It sends one user message per call and never retries.
type Client struct {
	cfg    Config
	api    sdk.Client
	logger *zap.Logger
}

var _ llm.Completer = (*Client)(nil)

func NewClient(cfg Config, logger *zap.Logger) *Client {
	cfg = cfg.withDefaults()
	api := sdk.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(newHTTPClient(cfg.Timeout)),
		option.WithMaxRetries(0),
	)
	return &Client{cfg: cfg, api: api, logger: nopIfNil(logger)}
}

// Model returns the configured default model.
func (c *Client) Model() string { return c.cfg.Model }

func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	if strings.TrimSpace(c.cfg.APIKey) == "" {
		c.logger.Warn("llm.complete.no_api_key", zap.String("req_id", rid))
		return "", common.NewCompletionError("API key is not configured", common.ErrMissingAPIKey)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", common.NewCompletionError("prompt is empty", common.ErrEmptyInput)
	}

	c.logger.Info("llm.complete.start",
		zap.String("req_id", rid),
		zap.String("model", model),
		zap.Float64("temp", req.Temperature),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Int("prompt_len", len(req.Prompt)),
	)

	params := sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.UserMessage(req.Prompt),
		},
		Temperature: sdk.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(req.MaxTokens))
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			c.logger.Error("llm.complete.http_error",
				zap.String("req_id", rid),
				zap.Int("status", apiErr.StatusCode),
				zap.Error(err),
				zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
			)
			return "", common.NewCompletionError(fmt.Sprintf("completion endpoint returned status %d", apiErr.StatusCode), err)
		}
		c.logger.Error("llm.complete.transport_error",
			zap.String("req_id", rid),
			zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return "", common.NewCompletionError("completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("llm.complete.no_choices",
			zap.String("req_id", rid),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return "", common.NewCompletionError("completion returned no choices", fmt.Errorf("no choices in response"))
	}

	content := resp.Choices[0].Message.Content
	c.logger.Info("llm.complete.ok",
		zap.String("req_id", rid),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("content_len", len(content)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return content, nil
}
