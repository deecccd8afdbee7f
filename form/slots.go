package form

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tbxark/formbot/responder"
	"github.com/tbxark/formbot/types"
)

// SlotSpec binds a required slot to its extraction strategies and validator.
type SlotSpec struct {
	Name        string
	DisplayName string
	Description string
	Mapping     []Strategy
	Validator   Validator
}

// SlotForm implements the Form operations over an ordered list of slot specs.
// Concrete forms embed it and add their name and schema.
type SlotForm struct {
	name      string
	slots     []SlotSpec
	index     map[string]int
	extractor Extractor
	submit    string
}

type Option func(*SlotForm)

// WithExtractor replaces the default MappingExtractor.
func WithExtractor(e Extractor) Option {
	return func(f *SlotForm) {
		if e != nil {
			f.extractor = e
		}
	}
}

// WithSubmitTemplate changes the template sent on completion.
func WithSubmitTemplate(template string) Option {
	return func(f *SlotForm) {
		f.submit = template
	}
}

func NewSlotForm(name string, slots []SlotSpec, opts ...Option) *SlotForm {
	f := &SlotForm{
		name:      name,
		slots:     slots,
		index:     make(map[string]int, len(slots)),
		extractor: MappingExtractor{},
		submit:    responder.TemplateSubmit,
	}
	for i, s := range slots {
		f.index[s.Name] = i
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *SlotForm) Name() string {
	return f.name
}

func (f *SlotForm) RequiredSlots() []string {
	names := make([]string, 0, len(f.slots))
	for _, s := range f.slots {
		names = append(names, s.Name)
	}
	return names
}

func (f *SlotForm) SlotMapping() map[string][]Strategy {
	mapping := make(map[string][]Strategy, len(f.slots))
	for _, s := range f.slots {
		mapping[s.Name] = s.Mapping
	}
	return mapping
}

func (f *SlotForm) Fields() []types.FieldInfo {
	fields := make([]types.FieldInfo, 0, len(f.slots))
	for _, s := range f.slots {
		fields = append(fields, types.FieldInfo{
			Slot:        s.Name,
			DisplayName: s.DisplayName,
			Description: s.Description,
			Required:    true,
		})
	}
	return fields
}

func (f *SlotForm) spec(slot string) (SlotSpec, bool) {
	i, ok := f.index[slot]
	if !ok {
		return SlotSpec{}, false
	}
	return f.slots[i], true
}

func (f *SlotForm) Extract(ctx context.Context, slot string, tracker *types.Tracker) ([]types.Event, error) {
	spec, ok := f.spec(slot)
	if !ok {
		return nil, fmt.Errorf("slot %q is not required by %s", slot, f.name)
	}
	events, err := f.extractor.Extract(ctx, slot, spec.Mapping, tracker)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", slot, err)
	}
	if len(events) == 0 {
		return nil, &ExtractionFailure{Form: f.name, Slot: slot}
	}
	return events, nil
}

func (f *SlotForm) Validate(ctx context.Context, slot string, events []types.Event, tracker *types.Tracker, r responder.Responder) ([]types.Event, error) {
	spec, ok := f.spec(slot)
	if !ok {
		return nil, fmt.Errorf("slot %q is not required by %s", slot, f.name)
	}
	validator := spec.Validator
	if validator == nil {
		validator = Passthrough{}
	}

	var candidates []types.Value
	validated := make([]types.Event, 0, len(events))
	for _, e := range events {
		if e.IsSlot() {
			candidates = append(candidates, e.Value)
		} else {
			validated = append(validated, e)
		}
	}

	for _, value := range candidates {
		outcome := validator.Validate(value)
		if outcome.Template != "" {
			if err := r.SendTemplate(ctx, outcome.Template, tracker); err != nil {
				return nil, err
			}
		}
		slog.Debug("Validated slot", "slot", slot, "input", value, "value", outcome.Value)
		validated = append(validated, types.SlotSet(slot, outcome.Value))
	}
	return validated, nil
}

func (f *SlotForm) Submit(ctx context.Context, tracker *types.Tracker, r responder.Responder) ([]types.Event, error) {
	if name, missing := tracker.FirstUnset(f.RequiredSlots()); missing {
		return nil, fmt.Errorf("submit %s: slot %s: %w", f.name, name, ErrIncomplete)
	}
	if err := r.SendTemplate(ctx, f.submit, tracker); err != nil {
		return nil, err
	}
	return []types.Event{}, nil
}
