package types

// Tracker is the state of one conversation. It is owned by a single form
// instance and handed explicitly to every component that needs it.
type Tracker struct {
	SenderID      string           `json:"sender_id"`
	ActiveForm    string           `json:"active_form,omitempty"`
	Phase         Phase            `json:"phase"`
	RequestedSlot string           `json:"requested_slot,omitempty"`
	Slots         map[string]Value `json:"slots"`
	LatestMessage Message          `json:"latest_message"`
	Events        []Event          `json:"events,omitempty"`
}

func NewTracker(senderID string) *Tracker {
	return &Tracker{
		SenderID: senderID,
		Phase:    PhaseCollecting,
		Slots:    map[string]Value{},
	}
}

func (t *Tracker) Slot(name string) Value {
	if t == nil || t.Slots == nil {
		return Null()
	}
	return t.Slots[name]
}

// FirstUnset returns the first slot in order whose value is null.
func (t *Tracker) FirstUnset(required []string) (string, bool) {
	for _, name := range required {
		if t.Slot(name).IsNull() {
			return name, true
		}
	}
	return "", false
}

func (t *Tracker) Filled(required []string) bool {
	_, missing := t.FirstUnset(required)
	return !missing
}

// Clone returns a deep copy so a turn can be rejected without touching the
// stored tracker.
func (t *Tracker) Clone() *Tracker {
	if t == nil {
		return nil
	}
	out := *t
	out.Slots = make(map[string]Value, len(t.Slots))
	for k, v := range t.Slots {
		out.Slots[k] = v
	}
	if t.LatestMessage.Entities != nil {
		out.LatestMessage.Entities = append([]Entity(nil), t.LatestMessage.Entities...)
	}
	if t.Events != nil {
		out.Events = append([]Event(nil), t.Events...)
	}
	return &out
}
