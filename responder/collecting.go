package responder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tbxark/formbot/types"
)

// CollectingResponder renders templates and buffers the messages until the
// host drains them.
type CollectingResponder struct {
	renderer Renderer
	messages []BotMessage
}

func NewCollectingResponder(renderer Renderer) *CollectingResponder {
	return &CollectingResponder{renderer: renderer}
}

func (r *CollectingResponder) SendTemplate(ctx context.Context, template string, tracker *types.Tracker) error {
	text, err := r.renderer.Render(ctx, template, tracker)
	if err != nil {
		return fmt.Errorf("render template %s: %w", template, err)
	}
	slog.Debug("Sending template", "template", template, "text", text)
	r.messages = append(r.messages, BotMessage{Template: template, Text: text})
	return nil
}

func (r *CollectingResponder) Messages() []BotMessage {
	return r.messages
}

// Drain returns the buffered messages and empties the buffer.
func (r *CollectingResponder) Drain() []BotMessage {
	out := r.messages
	r.messages = nil
	return out
}

// Templates lists the template ids sent so far, in order.
func (r *CollectingResponder) Templates() []string {
	out := make([]string, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, m.Template)
	}
	return out
}

var _ Responder = (*CollectingResponder)(nil)
