package types

type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseComplete   Phase = "complete"
	PhaseCancelled  Phase = "cancelled"
)

// Closed reports whether no further turns are accepted in this phase.
func (p Phase) Closed() bool {
	return p == PhaseComplete || p == PhaseCancelled
}

type FieldInfo struct {
	Slot        string `json:"slot"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

type Entity struct {
	Entity string `json:"entity" jsonschema:"required,description=Entity type such as cuisine, number, seating or feedback"`
	Value  string `json:"value" jsonschema:"required,description=Literal entity value as written by the user"`
}

// Message is the interpreted form of one user turn.
type Message struct {
	Text     string   `json:"text"`
	Intent   string   `json:"intent,omitempty"`
	Entities []Entity `json:"entities,omitempty"`
}

// FirstEntity returns the value of the first entity of the given type.
func (m Message) FirstEntity(name string) (string, bool) {
	for _, e := range m.Entities {
		if e.Entity == name {
			return e.Value, true
		}
	}
	return "", false
}

const (
	EventSlot   = "slot"
	EventForm   = "form"
	EventAction = "action"
)

type Event struct {
	Event string `json:"event"`
	Name  string `json:"name,omitempty"`
	Value Value  `json:"value"`
}

func SlotSet(name string, value Value) Event {
	return Event{Event: EventSlot, Name: name, Value: value}
}

func (e Event) IsSlot() bool {
	return e.Event == EventSlot
}

// TurnRequest carries everything the model-backed components need to reason about a turn.
type TurnRequest struct {
	Form          string
	Slots         map[string]Value
	RequestedSlot string
	Phase         Phase
	Schema        string
	UserText      string
	MissingSlots  []FieldInfo
}
