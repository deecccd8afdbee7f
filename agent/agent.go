package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formbot/form"
)

// Message extra keys set on every assistant message produced by Agent.
const (
	ExtraTemplates = "formbot_templates"
	ExtraPhase     = "formbot_phase"
)

var _ adk.Agent = (*Agent)(nil)

// Agent exposes a FormFlow as an eino adk agent. Each run treats the last
// user message of the input as the turn. A run that finishes the form ends
// with an exit action.
type Agent struct {
	name        string
	description string
	flow        *FormFlow
}

func NewAgent(name, description string, flow *FormFlow) *Agent {
	return &Agent{
		name:        name,
		description: description,
		flow:        flow,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			if e := recover(); e != nil {
				gen.Send(&adk.AgentEvent{
					AgentName: a.name,
					Err:       fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		gen.Send(a.turn(ctx, input))
	}()
	return iter
}

func (a *Agent) turn(ctx context.Context, input *adk.AgentInput) *adk.AgentEvent {
	text, ok := lastUserText(input.Messages)
	if !ok {
		return &adk.AgentEvent{AgentName: a.name, Err: fmt.Errorf("no user message in input")}
	}
	resp, err := a.flow.Invoke(ctx, &Request{UserText: text})
	if errors.Is(err, form.ErrExtractionFailure) {
		resp, err = a.flow.Reprompt(ctx)
	}
	if err != nil {
		return &adk.AgentEvent{AgentName: a.name, Err: fmt.Errorf("flow invoke failed: %w", err)}
	}

	event := &adk.AgentEvent{
		AgentName: a.name,
		Output: &adk.AgentOutput{
			MessageOutput: &adk.MessageVariant{
				IsStreaming: false,
				Message:     responseMessage(resp),
				Role:        schema.Assistant,
			},
		},
	}
	if resp.Tracker != nil && resp.Tracker.Phase.Closed() {
		event.Action = &adk.AgentAction{Exit: true}
	}
	return event
}

func lastUserText(messages []adk.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if m := messages[i]; m != nil && m.Role == schema.User {
			return m.Content, true
		}
	}
	return "", false
}

func responseMessage(resp *Response) *schema.Message {
	templates := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		templates = append(templates, m.Template)
	}
	extra := map[string]any{ExtraTemplates: templates}
	if resp.Tracker != nil {
		extra[ExtraPhase] = string(resp.Tracker.Phase)
	}
	msg := schema.AssistantMessage(resp.Text(), nil)
	msg.Extra = extra
	return msg
}
