package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValueJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Value
	}{
		{"null", `null`, Null()},
		{"string", `"italian"`, String("italian")},
		{"bool", `true`, Bool(true)},
		{"number kept as text", `4`, String("4")},
		{"negative number", `-3`, String("-3")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got Value
			if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.in, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := json.Marshal(map[string]Value{"a": Null()}); err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var bad Value
	if err := json.Unmarshal([]byte(`{"x":1}`), &bad); err == nil {
		t.Errorf("expected error for object value")
	}
}

func TestTrackerFirstUnsetAndClone(t *testing.T) {
	required := []string{"cuisine", "num_people"}
	tr := NewTracker("bob")
	tr.Slots["cuisine"] = String("greek")
	tr.Slots["num_people"] = Null()

	if slot, ok := tr.FirstUnset(required); !ok || slot != "num_people" {
		t.Fatalf("FirstUnset = %q, %v", slot, ok)
	}
	if tr.Filled(required) {
		t.Fatalf("tracker should not be filled")
	}

	clone := tr.Clone()
	clone.Slots["num_people"] = String("2")
	if !tr.Slot("num_people").IsNull() {
		t.Errorf("clone shares slots with original")
	}
	if !clone.Filled(required) {
		t.Errorf("clone should be filled")
	}
}

func TestFormatTurnRequest(t *testing.T) {
	out := FormatTurnRequest(&TurnRequest{
		Form:          "restaurant_form",
		Slots:         map[string]Value{"cuisine": String("italian")},
		RequestedSlot: "num_people",
		Phase:         PhaseCollecting,
		UserText:      "we are four",
		MissingSlots:  []FieldInfo{{Slot: "num_people", DisplayName: "Number of people", Required: true}},
	})
	for _, want := range []string{"restaurant_form", "italian", "num_people", "Number of people", "we are four"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted request missing %q:\n%s", want, out)
		}
	}
}
