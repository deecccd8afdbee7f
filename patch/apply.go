package patch

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/tbxark/formbot/types"
)

// applySlots runs ops against the JSON document of slots and decodes the
// result back into a new slot map. slots itself is not modified.
func applySlots(slots map[string]types.Value, ops []Operation) (map[string]types.Value, error) {
	if len(ops) == 0 {
		return slots, nil
	}
	ops = normalize(slots, ops)

	doc, err := json.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal slots: %w", err)
	}
	raw, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch operations: %w", err)
	}
	p, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch: %w", err)
	}
	patched, err := p.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to apply patch: %w", err)
	}

	out := make(map[string]types.Value, len(slots))
	if err := json.Unmarshal(patched, &out); err != nil {
		return nil, fmt.Errorf("patched slots are not slot values: %w", err)
	}
	return out, nil
}

// normalize rewrites ops against the slots present at each step. A replace
// of a slot that was never written becomes an add. A remove unsets the slot
// (slots are never deleted) and is dropped when the slot is absent.
func normalize(slots map[string]types.Value, ops []Operation) []Operation {
	present := make(map[string]bool, len(slots))
	for name := range slots {
		present[name] = true
	}
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		name := slotName(op.Path)
		switch op.Op {
		case OperationReplace:
			if !present[name] {
				op.Op = OperationAdd
			}
		case OperationRemove:
			if !present[name] {
				continue
			}
			op = Operation{Op: OperationReplace, Path: op.Path, Value: types.Null()}
		}
		present[name] = true
		out = append(out, op)
	}
	return out
}

func slotName(path string) string {
	token := strings.TrimPrefix(path, "/")
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
