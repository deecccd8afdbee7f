package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formbot/types"
)

// DefaultRephraseSystemPromptTemplate is the default system prompt template used by
// ToolBasedRenderer. The template may contain a single "%s" placeholder for the language.
const DefaultRephraseSystemPromptTemplate = `You are a friendly restaurant booking assistant.

You receive the message the assistant must send next, together with the current booking state.
Rephrase the message so it sounds natural and conversational:
- Keep every fact, number and slot value from the original message.
- Do not ask for anything the original message does not ask for.
- Do not add lists or bullet points unless the original message has them.
- Reply in %s.
`

type rendererOptions struct {
	lang                 string
	systemPrompt         string
	systemPromptTemplate string
}

type RendererOption func(*rendererOptions)

// WithLang sets the language used by the default system prompt template.
func WithLang(lang string) RendererOption {
	return func(o *rendererOptions) {
		o.lang = lang
	}
}

// WithSystemPrompt overrides the system prompt used by ToolBasedRenderer.
func WithSystemPrompt(systemPrompt string) RendererOption {
	return func(o *rendererOptions) {
		o.systemPrompt = systemPrompt
	}
}

// WithSystemPromptTemplate overrides the system prompt template used by ToolBasedRenderer.
// If the template contains "%s", it will be formatted with the language.
func WithSystemPromptTemplate(systemPromptTemplate string) RendererOption {
	return func(o *rendererOptions) {
		o.systemPromptTemplate = systemPromptTemplate
	}
}

// ToolBasedRenderer renders a template with base and lets a chat model rephrase it.
type ToolBasedRenderer struct {
	Lang      string
	base      Renderer
	chatModel model.BaseChatModel
	prompt    string
}

func NewToolBasedRenderer(chatModel model.BaseChatModel, base Renderer, opts ...RendererOption) *ToolBasedRenderer {
	options := rendererOptions{
		lang:                 "English",
		systemPromptTemplate: DefaultRephraseSystemPromptTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.lang == "" {
		options.lang = "English"
	}
	prompt := options.systemPrompt
	if prompt == "" {
		tpl := options.systemPromptTemplate
		if tpl == "" {
			tpl = DefaultRephraseSystemPromptTemplate
		}
		if strings.Contains(tpl, "%s") {
			prompt = fmt.Sprintf(tpl, options.lang)
		} else {
			prompt = tpl
		}
	}
	return &ToolBasedRenderer{
		Lang:      options.lang,
		base:      base,
		chatModel: chatModel,
		prompt:    prompt,
	}
}

func (r *ToolBasedRenderer) Render(ctx context.Context, template string, tracker *types.Tracker) (string, error) {
	original, err := r.base.Render(ctx, template, tracker)
	if err != nil {
		return "", err
	}
	req := &types.TurnRequest{}
	if tracker != nil {
		req.Form = tracker.ActiveForm
		req.Slots = tracker.Slots
		req.Phase = tracker.Phase
		req.RequestedSlot = tracker.RequestedSlot
		req.UserText = tracker.LatestMessage.Text
	}
	user := fmt.Sprintf("%s\n\n# Message to send:\n%s", types.FormatTurnRequest(req), original)
	response, err := r.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(r.prompt),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	text := strings.TrimSpace(response.Content)
	if text == "" {
		return "", fmt.Errorf("LLM returned empty message for template %s", template)
	}
	return text, nil
}

type FailbackRenderer struct {
	renderers []Renderer
}

func NewFailbackRenderer(renderers ...Renderer) *FailbackRenderer {
	return &FailbackRenderer{renderers: renderers}
}

func (r *FailbackRenderer) Render(ctx context.Context, template string, tracker *types.Tracker) (string, error) {
	var lastErr error
	for _, renderer := range r.renderers {
		text, err := renderer.Render(ctx, template, tracker)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all renderers failed: %w", lastErr)
}

var (
	_ Renderer = (*ToolBasedRenderer)(nil)
	_ Renderer = (*FailbackRenderer)(nil)
)
