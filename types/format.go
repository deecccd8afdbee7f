package types

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

func formatSlotsSection(slots map[string]Value) string {
	if len(slots) == 0 {
		return ""
	}
	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Strings(names)
	var buf strings.Builder
	buf.WriteString("# Filled slots:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Slot", "Value")
	for _, name := range names {
		_ = table.Append(name, slots[name].String())
	}
	_ = table.Render()
	return buf.String()
}

func formatMissingSlotsSection(fields []FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Missing required slots:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Slot", "Name", "Description")
	for _, field := range fields {
		_ = table.Append(field.Slot, field.DisplayName, field.Description)
	}
	_ = table.Render()
	return buf.String()
}

func FormatTurnRequest(req *TurnRequest) string {
	sections := []string{
		fmt.Sprintf("# Current Date: \n %s", time.Now().Format(time.RFC3339)),
	}
	if req.Form != "" {
		sections = append(sections, fmt.Sprintf("# Form:\n%s", req.Form))
	}
	if req.Schema != "" {
		sections = append(sections, fmt.Sprintf("# Booking schema JSON:\n```json\n%s\n```", req.Schema))
	}
	if req.Phase != "" {
		sections = append(sections, fmt.Sprintf("# Current Phase:\n%s", req.Phase))
	}
	if s := formatSlotsSection(req.Slots); s != "" {
		sections = append(sections, s)
	}
	if req.RequestedSlot != "" {
		sections = append(sections, fmt.Sprintf("# Requested slot:\n%s", req.RequestedSlot))
	}
	if s := formatMissingSlotsSection(req.MissingSlots); s != "" {
		sections = append(sections, s)
	}
	if req.UserText != "" {
		sections = append(sections, fmt.Sprintf("# User Message:\n%s", req.UserText))
	}
	return strings.Join(sections, "\n\n")
}
