package responder

import (
	"context"

	"github.com/tbxark/formbot/types"
)

const (
	TemplateWrongCuisine   = "wrong_cuisine"
	TemplateWrongNumPeople = "wrong_num_people"
	TemplateSubmit         = "submit"
	TemplateCancelled      = "cancelled"
)

// AskTemplate is the template used to request a slot.
func AskTemplate(slot string) string {
	return "ask_" + slot
}

type BotMessage struct {
	Template string `json:"template"`
	Text     string `json:"text"`
}

// Responder sends templated messages to the user.
type Responder interface {
	SendTemplate(ctx context.Context, template string, tracker *types.Tracker) error
}

// Renderer turns a template id into user facing text.
type Renderer interface {
	Render(ctx context.Context, template string, tracker *types.Tracker) (string, error)
}
