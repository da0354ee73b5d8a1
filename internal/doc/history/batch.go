package history

import (
	"errors"
	"fmt"
	"time"
)

// Origin says what produced a batch.
type Origin int

const (
	// OriginCommand is an ordinary transaction.
	OriginCommand Origin = iota
	// OriginFixup is a repair transaction run while handling a change.
	OriginFixup
	// OriginUndo is a batch being reverted.
	OriginUndo
	// OriginRedo is a batch being re-applied.
	OriginRedo
	// OriginLoad is a whole-document load.
	OriginLoad
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginCommand:
		return "command"
	case OriginFixup:
		return "fixup"
	case OriginUndo:
		return "undo"
	case OriginRedo:
		return "redo"
	case OriginLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Batch is the ordered set of operations produced by one transaction.
type Batch struct {
	Name      string
	Ops       []Operation
	Timestamp time.Time
}

// NewBatch creates an empty batch.
func NewBatch(name string) *Batch {
	return &Batch{Name: name, Timestamp: time.Now()}
}

// Add appends an already-applied operation.
func (b *Batch) Add(op Operation) {
	b.Ops = append(b.Ops, op)
}

// Len returns the number of operations.
func (b *Batch) Len() int {
	return len(b.Ops)
}

// IsEmpty reports whether the batch holds no operations.
func (b *Batch) IsEmpty() bool {
	return len(b.Ops) == 0
}

// Apply runs every operation in order. If one fails, the ones already
// applied are reverted before the error is returned.
func (b *Batch) Apply() error {
	for i, op := range b.Ops {
		if err := op.Apply(); err != nil {
			rollback := revertOps(b.Ops[:i])
			return errors.Join(fmt.Errorf("apply %q op %d: %w", b.Name, i, err), rollback)
		}
	}
	return nil
}

// Revert undoes every operation, last first.
func (b *Batch) Revert() error {
	return revertOps(b.Ops)
}

// Description returns the batch name.
func (b *Batch) Description() string {
	return b.Name
}

func revertOps(ops []Operation) error {
	var errs []error
	for i := len(ops) - 1; i >= 0; i-- {
		if err := ops[i].Revert(); err != nil {
			errs = append(errs, fmt.Errorf("revert %s: %w", ops[i].Description(), err))
		}
	}
	return errors.Join(errs...)
}
