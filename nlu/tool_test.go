package nlu

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tbxark/formbot/internal/fakemodel"
	"github.com/tbxark/formbot/types"
)

func TestToolBasedInterpreterParse(t *testing.T) {
	cm := fakemodel.New(fakemodel.ToolCall(parseMessageToolName,
		`{"intent":"inform","entities":[{"entity":"number","value":"4"},{"entity":"cuisine","value":""}]}`))
	p, err := NewToolBasedInterpreter(cm)
	if err != nil {
		t.Fatalf("NewToolBasedInterpreter: %v", err)
	}
	got, err := p.Parse(context.Background(), &types.TurnRequest{
		Form:          "restaurant_form",
		RequestedSlot: "num_people",
		UserText:      "four of us, so 4",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := types.Message{
		Text:     "four of us, so 4",
		Intent:   IntentInform,
		Entities: []types.Entity{{Entity: "number", Value: "4"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
	calls := cm.Calls()
	if len(calls) != 1 || len(calls[0]) != 2 {
		t.Fatalf("unexpected prompts %v", calls)
	}
	if !strings.Contains(calls[0][1].Content, "num_people") {
		t.Errorf("prompt does not mention requested slot:\n%s", calls[0][1].Content)
	}
}

func TestFailbackInterpreterFallsBackToLocal(t *testing.T) {
	cm := fakemodel.New(fakemodel.Fail(errors.New("rate limited")))
	tool, err := NewToolBasedInterpreter(cm)
	if err != nil {
		t.Fatalf("NewToolBasedInterpreter: %v", err)
	}
	p := NewFailbackInterpreter(tool, NewLocalInterpreter())
	got, err := p.Parse(context.Background(), &types.TurnRequest{UserText: "yes"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Intent != IntentAffirm {
		t.Fatalf("intent = %q, want affirm", got.Intent)
	}
}

func TestFailbackInterpreterReturnsLastError(t *testing.T) {
	cm := fakemodel.New(fakemodel.Text("no tool call here"), fakemodel.Text("still no tool call"))
	tool, err := NewToolBasedInterpreter(cm)
	if err != nil {
		t.Fatalf("NewToolBasedInterpreter: %v", err)
	}
	_, err = NewFailbackInterpreter(tool).Parse(context.Background(), &types.TurnRequest{UserText: "hi"})
	if err == nil || !strings.Contains(err.Error(), "no ToolCall") {
		t.Fatalf("expected missing tool call error, got %v", err)
	}
}

func TestToolBasedInterpreterRetriesUnknownIntent(t *testing.T) {
	cm := fakemodel.New(
		fakemodel.ToolCall(parseMessageToolName, `{"intent":"order_food","entities":[]}`),
		fakemodel.ToolCall(parseMessageToolName, `{"intent":"deny","entities":[]}`),
	)
	p, err := NewToolBasedInterpreter(cm)
	if err != nil {
		t.Fatalf("NewToolBasedInterpreter: %v", err)
	}
	got, err := p.Parse(context.Background(), &types.TurnRequest{RequestedSlot: "preferences", UserText: "nothing else"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Intent != IntentDeny {
		t.Fatalf("intent = %q, want deny", got.Intent)
	}
	if len(cm.Calls()) != 2 {
		t.Fatalf("expected one retry, got %d calls", len(cm.Calls()))
	}
}
