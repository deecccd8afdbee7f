package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStartChat_LocalBooking(t *testing.T) {
	input := strings.Join([]string{
		"hi, I'd like to book a table",
		"Italian",
		"4",
		"outside please",
		"no",
		"great",
	}, "\n") + "\n"
	var out bytes.Buffer
	conf := &Config{Lang: "English"}
	if err := startChat(context.Background(), conf, "test-sender", strings.NewReader(input), &out); err != nil {
		t.Fatalf("startChat: %v", err)
	}
	text := out.String()
	for _, want := range []string{"cuisine", "how many people", "All done!", "bye."} {
		if !strings.Contains(strings.ToLower(text), strings.ToLower(want)) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestSlotsCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"slots"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, slot := range []string{"cuisine", "num_people", "outdoor_seating", "preferences", "feedback"} {
		if !strings.Contains(out.String(), slot) {
			t.Errorf("slots output missing %q", slot)
		}
	}
}
