package agent

import (
	"strings"

	"github.com/tbxark/formbot/responder"
	"github.com/tbxark/formbot/types"
)

type Request struct {
	UserText string `json:"user_text"`
}

type Response struct {
	Messages []responder.BotMessage `json:"messages,omitempty"`
	Tracker  *types.Tracker         `json:"tracker,omitempty"`
	Events   []types.Event          `json:"events,omitempty"`
	Metadata map[string]string      `json:"metadata,omitempty"`
}

// Text joins the bot messages of the turn.
func (r *Response) Text() string {
	parts := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n")
}
