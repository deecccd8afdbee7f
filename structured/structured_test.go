package structured

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formbot/internal/fakemodel"
)

type seatingInput struct {
	Text string
}

type seatingOutput struct {
	Outdoor bool   `json:"outdoor" jsonschema:"required,description=Whether the guest wants to sit outside"`
	Reason  string `json:"reason,omitempty" jsonschema:"description=Short justification"`
}

func buildSeatingPrompt(ctx context.Context, input seatingInput) ([]*schema.Message, error) {
	return []*schema.Message{
		schema.SystemMessage("Decide whether the guest wants outdoor seating. Call classify_seating."),
		schema.UserMessage(input.Text),
	}, nil
}

func TestChainInvoke(t *testing.T) {
	cm := fakemodel.New(fakemodel.ToolCall("classify_seating", `{"outdoor":true,"reason":"asked for the terrace"}`))
	chain, err := NewChain[seatingInput, seatingOutput](cm, buildSeatingPrompt, "classify_seating", "Classify the seating wish")
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	if chain.Tool().Name != "classify_seating" {
		t.Fatalf("tool name = %q", chain.Tool().Name)
	}
	got, err := chain.Invoke(context.Background(), seatingInput{Text: "a table on the terrace"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !got.Outdoor || got.Reason != "asked for the terrace" {
		t.Fatalf("unexpected output %+v", got)
	}
}

func TestChainInvokeWithoutToolCall(t *testing.T) {
	cm := fakemodel.New(fakemodel.Text("I think outside"))
	chain, err := NewChain[seatingInput, seatingOutput](cm, buildSeatingPrompt, "classify_seating", "Classify the seating wish")
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	_, err = chain.Invoke(context.Background(), seatingInput{Text: "outside"})
	if err == nil || !strings.Contains(err.Error(), "no ToolCall found") {
		t.Fatalf("expected missing tool call error, got %v", err)
	}
}

func TestChainInvokeBadArguments(t *testing.T) {
	cm := fakemodel.New(fakemodel.ToolCall("classify_seating", `{"outdoor":"maybe"`))
	chain, err := NewChain[seatingInput, seatingOutput](cm, buildSeatingPrompt, "classify_seating", "Classify the seating wish")
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	if _, err := chain.Invoke(context.Background(), seatingInput{Text: "outside"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestChainRetriesUnusableAnswer(t *testing.T) {
	cm := fakemodel.New(
		fakemodel.Text("I think outside"),
		fakemodel.ToolCall("classify_seating", `{"outdoor":true,"reason":""}`),
		fakemodel.ToolCall("classify_seating", `{"outdoor":true,"reason":"terrace"}`),
	)
	chain, err := NewChain[seatingInput, seatingOutput](cm, buildSeatingPrompt, "classify_seating", "Classify the seating wish",
		WithRetries[seatingOutput](2),
		WithCheck(func(out *seatingOutput) error {
			if out.Reason == "" {
				return errors.New("reason is empty")
			}
			return nil
		}),
	)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	got, err := chain.Invoke(context.Background(), seatingInput{Text: "on the terrace"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got.Reason != "terrace" {
		t.Fatalf("unexpected output %+v", got)
	}
	calls := cm.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 model calls, got %d", len(calls))
	}
	if len(calls[0]) != 2 || len(calls[2]) != 3 {
		t.Fatalf("retry prompt should add one corrective message: %d, %d", len(calls[0]), len(calls[2]))
	}
	if !strings.Contains(calls[2][2].Content, "reason is empty") {
		t.Errorf("corrective message does not carry the error: %q", calls[2][2].Content)
	}
}

func TestChainDoesNotRetryModelError(t *testing.T) {
	cm := fakemodel.New(fakemodel.Fail(errors.New("timeout")), fakemodel.ToolCall("classify_seating", `{"outdoor":true}`))
	chain, err := NewChain[seatingInput, seatingOutput](cm, buildSeatingPrompt, "classify_seating", "Classify the seating wish",
		WithRetries[seatingOutput](3))
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	if _, err := chain.Invoke(context.Background(), seatingInput{Text: "outside"}); err == nil {
		t.Fatal("expected model error")
	}
	if len(cm.Calls()) != 1 {
		t.Fatalf("model error should not be retried, got %d calls", len(cm.Calls()))
	}
}
