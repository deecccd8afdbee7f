package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/tbxark/formbot/form"
	"github.com/tbxark/formbot/nlu"
	"github.com/tbxark/formbot/patch"
	"github.com/tbxark/formbot/responder"
	"github.com/tbxark/formbot/types"
)

var ErrFormClosed = errors.New("form is no longer active")

// FormFlow runs one form for one conversation, one user turn per Invoke.
type FormFlow struct {
	schema      string
	form        form.Form
	interpreter nlu.Interpreter
	renderer    responder.Renderer
	trackers    TrackerReadWriter
	manager     form.Manager
	prefill     map[string]types.Value
}

type FlowOption func(*FormFlow)

// WithManager registers the hook notified on submit and cancel.
func WithManager(m form.Manager) FlowOption {
	return func(f *FormFlow) {
		f.manager = m
	}
}

// WithPrefill sets slot values applied when the form is activated.
func WithPrefill(values map[string]types.Value) FlowOption {
	return func(f *FormFlow) {
		f.prefill = values
	}
}

func NewFormFlow(
	f form.Form,
	interpreter nlu.Interpreter,
	renderer responder.Renderer,
	trackers TrackerReadWriter,
	opts ...FlowOption,
) (*FormFlow, error) {
	schema, err := f.JsonSchema()
	if err != nil {
		return nil, err
	}
	flow := &FormFlow{
		schema:      schema,
		form:        f,
		interpreter: interpreter,
		renderer:    renderer,
		trackers:    trackers,
	}
	for _, opt := range opts {
		opt(flow)
	}
	return flow, nil
}

// NewLocalFormFlow wires the keyword interpreter and the template renderer.
func NewLocalFormFlow(f form.Form, domain *responder.Domain, trackers TrackerReadWriter, opts ...FlowOption) (*FormFlow, error) {
	return NewFormFlow(f, nlu.NewLocalInterpreter(), responder.NewTemplateRenderer(domain), trackers, opts...)
}

// NewToolBasedFormFlow uses the chat model for interpretation and phrasing,
// falling back to the local implementations when the model fails.
func NewToolBasedFormFlow(
	f form.Form,
	chatModel model.ToolCallingChatModel,
	domain *responder.Domain,
	trackers TrackerReadWriter,
	lang string,
	opts ...FlowOption,
) (*FormFlow, error) {
	interpreter, err := nlu.NewToolBasedInterpreter(chatModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool-based interpreter: %w", err)
	}
	templates := responder.NewTemplateRenderer(domain)
	return NewFormFlow(
		f,
		nlu.NewFailbackInterpreter(interpreter, nlu.NewLocalInterpreter()),
		responder.NewFailbackRenderer(
			responder.NewToolBasedRenderer(chatModel, templates, responder.WithLang(lang)),
			templates,
		),
		trackers,
		opts...,
	)
}

func (a *FormFlow) Form() form.Form {
	return a.form
}

func (a *FormFlow) Invoke(ctx context.Context, input *Request) (*Response, error) {
	if _, ok := StateKeyFromContext(ctx); !ok {
		slog.Warn("No state key in context, using the shared default conversation", "form", a.form.Name(), "key", defaultStateKey)
	}
	stored, err := a.trackers.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracker: %w", err)
	}
	if stored.Phase.Closed() {
		return nil, fmt.Errorf("%s is %s: %w", a.form.Name(), stored.Phase, ErrFormClosed)
	}
	tracker := stored.Clone()
	out := responder.NewCollectingResponder(a.renderer)

	var events []types.Event
	if tracker.ActiveForm == "" {
		events, err = a.activate(tracker)
	} else {
		var stop bool
		events, stop, err = a.runTurn(ctx, tracker, input, out)
		if err == nil && stop {
			return a.cancel(ctx, tracker, out)
		}
	}
	if err != nil {
		return nil, err
	}

	more, err := a.requestNext(ctx, tracker, out)
	if err != nil {
		return nil, err
	}
	events = append(events, more...)

	if err := a.trackers.Write(ctx, tracker); err != nil {
		return nil, fmt.Errorf("failed to write tracker: %w", err)
	}
	return &Response{
		Messages: out.Drain(),
		Tracker:  tracker,
		Events:   events,
	}, nil
}

// Reprompt asks again for the requested slot without changing the tracker.
// Hosts call it after a turn was rejected with form.ErrExtractionFailure.
func (a *FormFlow) Reprompt(ctx context.Context) (*Response, error) {
	tracker, err := a.trackers.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracker: %w", err)
	}
	if tracker.Phase.Closed() || tracker.RequestedSlot == "" {
		return &Response{Tracker: tracker}, nil
	}
	out := responder.NewCollectingResponder(a.renderer)
	if err := out.SendTemplate(ctx, responder.AskTemplate(tracker.RequestedSlot), tracker); err != nil {
		return nil, err
	}
	return &Response{Messages: out.Drain(), Tracker: tracker}, nil
}

// Reset drops the conversation state; the next Invoke starts a new form.
func (a *FormFlow) Reset(ctx context.Context) error {
	return a.trackers.Remove(ctx)
}

func (a *FormFlow) activate(tracker *types.Tracker) ([]types.Event, error) {
	slog.Debug("Activating form", "form", a.form.Name(), "sender", tracker.SenderID)
	tracker.ActiveForm = a.form.Name()
	tracker.Phase = types.PhaseCollecting
	events := []types.Event{{Event: types.EventForm, Name: a.form.Name()}}
	if len(a.prefill) > 0 {
		slots, err := patch.Prefill(tracker.Slots, a.prefill, a.form.RequiredSlots())
		if err != nil {
			return nil, fmt.Errorf("failed to prefill slots: %w", err)
		}
		tracker.Slots = slots
	}
	tracker.Events = append(tracker.Events, events...)
	return events, nil
}

func (a *FormFlow) runTurn(ctx context.Context, tracker *types.Tracker, input *Request, out responder.Responder) ([]types.Event, bool, error) {
	slot := tracker.RequestedSlot
	turn := &types.TurnRequest{
		Form:          a.form.Name(),
		Slots:         tracker.Slots,
		RequestedSlot: slot,
		Phase:         tracker.Phase,
		Schema:        a.schema,
		UserText:      input.UserText,
		MissingSlots:  form.Missing(a.form, tracker),
	}
	slog.Debug("Interpreting message", "slot", slot, "text", input.UserText)
	msg, err := a.interpreter.Parse(ctx, turn)
	if err != nil {
		return nil, false, fmt.Errorf("failed to interpret message: %w", err)
	}
	tracker.LatestMessage = msg
	slog.Debug("Interpreted message", "intent", msg.Intent, "entities", msg.Entities)
	if msg.Intent == nlu.IntentStop {
		return nil, true, nil
	}
	if slot == "" {
		return nil, false, nil
	}

	extracted, err := a.form.Extract(ctx, slot, tracker)
	if err != nil {
		return nil, false, err
	}
	validated, err := a.form.Validate(ctx, slot, extracted, tracker, out)
	if err != nil {
		return nil, false, fmt.Errorf("failed to validate slot %s: %w", slot, err)
	}
	slots, err := patch.ApplyEvents(tracker.Slots, validated, a.form.RequiredSlots())
	if err != nil {
		return nil, false, fmt.Errorf("failed to apply slot events: %w", err)
	}
	tracker.Slots = slots
	tracker.Events = append(tracker.Events, validated...)
	slog.Debug("Applied slot events", "slot", slot, "value", tracker.Slot(slot))
	return validated, false, nil
}

func (a *FormFlow) requestNext(ctx context.Context, tracker *types.Tracker, out responder.Responder) ([]types.Event, error) {
	if next, ok := tracker.FirstUnset(a.form.RequiredSlots()); ok {
		tracker.RequestedSlot = next
		if err := out.SendTemplate(ctx, responder.AskTemplate(next), tracker); err != nil {
			return nil, err
		}
		return nil, nil
	}

	tracker.RequestedSlot = ""
	events, err := a.form.Submit(ctx, tracker, out)
	if err != nil {
		return nil, fmt.Errorf("failed to submit form: %w", err)
	}
	tracker.Phase = types.PhaseComplete
	tracker.Events = append(tracker.Events, events...)
	slog.Info("Form submitted", "form", a.form.Name(), "sender", tracker.SenderID, "slots", tracker.Slots)
	if a.manager != nil {
		if err := a.manager.Submit(ctx, tracker); err != nil {
			return nil, fmt.Errorf("failed to hand over submitted form: %w", err)
		}
	}
	return events, nil
}

func (a *FormFlow) cancel(ctx context.Context, tracker *types.Tracker, out *responder.CollectingResponder) (*Response, error) {
	tracker.Phase = types.PhaseCancelled
	tracker.RequestedSlot = ""
	if err := out.SendTemplate(ctx, responder.TemplateCancelled, tracker); err != nil {
		return nil, err
	}
	slog.Info("Form cancelled", "form", a.form.Name(), "sender", tracker.SenderID)
	if a.manager != nil {
		if err := a.manager.Cancel(ctx, tracker); err != nil {
			return nil, fmt.Errorf("failed to cancel form: %w", err)
		}
	}
	if err := a.trackers.Write(ctx, tracker); err != nil {
		return nil, fmt.Errorf("failed to write tracker: %w", err)
	}
	return &Response{
		Messages: out.Drain(),
		Tracker:  tracker,
		Metadata: map[string]string{"phase": string(tracker.Phase)},
	}, nil
}
