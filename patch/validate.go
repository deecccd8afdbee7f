package patch

import (
	"errors"
	"fmt"
)

var ErrSlotNotAllowed = errors.New("slot is not part of the form")

// CheckOperations rejects ops that are not add/replace/remove, writes
// without a value, and paths outside allowed. An empty allowed set permits
// every path.
func CheckOperations(ops []Operation, allowed map[string]bool) error {
	for i, op := range ops {
		switch op.Op {
		case OperationAdd, OperationReplace:
			if op.Value == nil {
				return fmt.Errorf("operation %d: %s %s without value", i, op.Op, op.Path)
			}
		case OperationRemove:
		default:
			return fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
		if len(allowed) > 0 && !allowed[op.Path] {
			return fmt.Errorf("operation %d: %q: %w", i, slotName(op.Path), ErrSlotNotAllowed)
		}
	}
	return nil
}
