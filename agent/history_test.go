package agent

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/google/go-cmp/cmp"
)

func contents(history []*schema.Message) []string {
	out := make([]string, 0, len(history))
	for _, m := range history {
		out = append(out, m.Content)
	}
	return out
}

func TestLastTurnsTrimmer(t *testing.T) {
	history := []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("hi"),
		schema.AssistantMessage("What cuisine?", nil),
		schema.UserMessage("thai"),
		schema.AssistantMessage("Cuisine is not in the database, please try again", nil),
		schema.AssistantMessage("What cuisine?", nil),
		schema.UserMessage("italian"),
		schema.AssistantMessage("How many people?", nil),
	}
	cases := []struct {
		turns int
		want  []string
	}{
		{0, []string{"sys"}},
		{1, []string{"sys", "italian", "How many people?"}},
		{2, []string{"sys", "thai", "Cuisine is not in the database, please try again", "What cuisine?", "italian", "How many people?"}},
		{10, contents(history)},
	}
	for _, tc := range cases {
		got := contents(LastTurnsTrimmer{Turns: tc.turns}.Trim(history))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Turns=%d mismatch (-want +got):\n%s", tc.turns, diff)
		}
	}
}

func TestHistoryStoreAppendDeduplicates(t *testing.T) {
	store := NewMemoryHistoryStore(LastTurnsTrimmer{Turns: 10})
	ctx := WithStateKey(context.Background(), "history")
	if _, err := store.Append(ctx, schema.UserMessage("hi"), schema.UserMessage("hi"), nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	hist, err := store.Append(ctx, schema.AssistantMessage("What cuisine?", nil))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history length = %d, want 2", len(hist))
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	hist, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("history not cleared: %v", hist)
	}
}
