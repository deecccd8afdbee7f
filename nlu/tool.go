package nlu

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formbot/structured"
	"github.com/tbxark/formbot/types"
)

const (
	parseMessageToolName        = "parse_message"
	parseMessageToolDescription = "Classify the user's latest message into an intent and extract the entities it mentions."
)

// DefaultParseSystemPromptTemplate is the default system prompt template used by
// ToolBasedInterpreter. The template may contain a single "%s" placeholder for the tool name.
const DefaultParseSystemPromptTemplate = `
You are the language understanding component of a restaurant booking assistant.

Read the booking state, the slot the assistant is currently asking for, and the user's latest message.

Choose exactly one intent:
- greet: the user only says hello.
- request_restaurant: the user asks to book or find a restaurant.
- inform: the user provides information (a cuisine, a number, a preference, feedback, seating wishes).
- affirm: the user agrees or says yes.
- deny: the user refuses, says no, or says they have nothing to add.
- stop: the user explicitly wants to abandon the booking.

Extract entities using only these types, copying the value as the user wrote it:
- cuisine: a kind of food or cuisine.
- number: a number of people, as digits (may be negative or zero if the user wrote so).
- seating: a seating wish such as "outside" or "inside".
- feedback: an opinion about the experience so far, only when the assistant asked for feedback.

Never invent values the user did not say. Call the '%s' tool with the result.
`

type parseMessageOutput struct {
	Intent   string         `json:"intent" jsonschema:"required,enum=greet,enum=request_restaurant,enum=inform,enum=affirm,enum=deny,enum=stop,description=The user's intent"`
	Entities []types.Entity `json:"entities" jsonschema:"description=Entities mentioned in the message"`
}

type PromptBuilder func(systemPrompt string) structured.PromptBuilder[*types.TurnRequest]

type interpreterOptions struct {
	systemPromptTemplate string
	promptBuilder        PromptBuilder
}

type InterpreterOption func(*interpreterOptions)

func WithParseSystemPromptTemplate(systemPromptTemplate string) InterpreterOption {
	return func(o *interpreterOptions) {
		o.systemPromptTemplate = systemPromptTemplate
	}
}

func WithParsePromptBuilder(promptBuilder PromptBuilder) InterpreterOption {
	return func(o *interpreterOptions) {
		o.promptBuilder = promptBuilder
	}
}

func newInterpreterOptions(opts ...InterpreterOption) *interpreterOptions {
	opt := interpreterOptions{
		systemPromptTemplate: DefaultParseSystemPromptTemplate,
		promptBuilder: func(systemPrompt string) structured.PromptBuilder[*types.TurnRequest] {
			return func(ctx context.Context, req *types.TurnRequest) ([]*schema.Message, error) {
				return []*schema.Message{
					schema.SystemMessage(systemPrompt),
					schema.UserMessage(types.FormatTurnRequest(req)),
				}, nil
			}
		},
	}
	for _, o := range opts {
		o(&opt)
	}
	return &opt
}

type ToolBasedInterpreter struct {
	chain *structured.Chain[*types.TurnRequest, parseMessageOutput]
}

func NewToolBasedInterpreter(chatModel model.ToolCallingChatModel, opts ...InterpreterOption) (*ToolBasedInterpreter, error) {
	options := newInterpreterOptions(opts...)
	chain, err := structured.NewChain[*types.TurnRequest, parseMessageOutput](
		chatModel,
		options.promptBuilder(fmt.Sprintf(options.systemPromptTemplate, parseMessageToolName)),
		parseMessageToolName,
		parseMessageToolDescription,
		structured.WithRetries[parseMessageOutput](1),
		structured.WithCheck(checkParseMessageOutput),
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedInterpreter{chain: chain}, nil
}

func (p *ToolBasedInterpreter) Parse(ctx context.Context, req *types.TurnRequest) (types.Message, error) {
	msg := types.Message{Text: strings.TrimSpace(req.UserText)}
	result, err := p.chain.Invoke(ctx, req)
	if err != nil {
		return msg, err
	}
	if result == nil || result.Intent == "" {
		return msg, fmt.Errorf("empty intent returned by %s", parseMessageToolName)
	}
	msg.Intent = result.Intent
	for _, e := range result.Entities {
		if e.Entity == "" || strings.TrimSpace(e.Value) == "" {
			continue
		}
		msg.Entities = append(msg.Entities, e)
	}
	return msg, nil
}

func checkParseMessageOutput(out *parseMessageOutput) error {
	switch out.Intent {
	case IntentGreet, IntentRequest, IntentInform, IntentAffirm, IntentDeny, IntentStop:
		return nil
	case "":
		return fmt.Errorf("empty intent")
	default:
		return fmt.Errorf("unknown intent %q", out.Intent)
	}
}

var _ Interpreter = (*ToolBasedInterpreter)(nil)
