// Package structured asks a chat model for typed output by forcing a single
// tool call and decoding its arguments.
package structured

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type PromptBuilder[TInput any] func(ctx context.Context, input TInput) ([]*schema.Message, error)

type chainOptions[TOutput any] struct {
	retries int
	check   func(*TOutput) error
}

type ChainOption[TOutput any] func(*chainOptions[TOutput])

// WithRetries re-asks the model up to n more times when the answer has no
// tool call, cannot be decoded, or fails the check. Model errors are not
// retried.
func WithRetries[TOutput any](n int) ChainOption[TOutput] {
	return func(o *chainOptions[TOutput]) {
		o.retries = max(n, 0)
	}
}

// WithCheck rejects decoded output that is well formed but unusable.
func WithCheck[TOutput any](check func(*TOutput) error) ChainOption[TOutput] {
	return func(o *chainOptions[TOutput]) {
		o.check = check
	}
}

type Chain[TInput, TOutput any] struct {
	promptBuilder PromptBuilder[TInput]
	chatModel     model.ToolCallingChatModel
	tool          *schema.ToolInfo
	opts          chainOptions[TOutput]
}

func NewChain[TInput, TOutput any](
	chatModel model.ToolCallingChatModel,
	promptBuilder PromptBuilder[TInput],
	toolName string,
	toolDesc string,
	opts ...ChainOption[TOutput],
) (*Chain[TInput, TOutput], error) {
	tool, err := utils.GoStruct2ToolInfo[TOutput](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	c := &Chain[TInput, TOutput]{
		promptBuilder: promptBuilder,
		chatModel:     chatModel,
		tool:          tool,
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c, nil
}

func (c *Chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, error) {
	messages, err := c.promptBuilder(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("build prompt failed: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.retries; attempt++ {
		prompt := messages
		if lastErr != nil {
			slog.Debug("Retrying structured call", "tool", c.tool.Name, "attempt", attempt, "error", lastErr)
			prompt = append(slices.Clone(messages), schema.UserMessage(fmt.Sprintf(
				"Your previous answer could not be used (%v). Call the '%s' tool again with valid arguments.",
				lastErr, c.tool.Name,
			)))
		}
		response, err := c.chatModel.Generate(ctx, prompt,
			model.WithTools([]*schema.ToolInfo{c.tool}),
			model.WithToolChoice(schema.ToolChoiceForced, c.tool.Name),
		)
		if err != nil {
			return nil, fmt.Errorf("call model failed: %w", err)
		}
		result, err := c.decode(response)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Chain[TInput, TOutput]) decode(response *schema.Message) (*TOutput, error) {
	if len(response.ToolCalls) == 0 {
		return nil, fmt.Errorf("no ToolCall found in model response: %s", response.Content)
	}
	var result TOutput
	if err := sonic.UnmarshalString(response.ToolCalls[0].Function.Arguments, &result); err != nil {
		return nil, fmt.Errorf("parse ToolCall arguments failed: %w", err)
	}
	if c.opts.check != nil {
		if err := c.opts.check(&result); err != nil {
			return nil, fmt.Errorf("check ToolCall arguments failed: %w", err)
		}
	}
	return &result, nil
}

func (c *Chain[TInput, TOutput]) Tool() *schema.ToolInfo {
	return c.tool
}
