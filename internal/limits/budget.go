package limits

import "fmt"

// Budget tracks bytes charged by a heap against an optional ceiling. A zero
// limit means unlimited.
type Budget struct {
	limit int64
	used  int64
}

func NewBudget(limit int64) *Budget {
	if limit < 0 {
		limit = 0
	}
	return &Budget{limit: limit}
}

func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}

func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used
}

func MaxMemoryMessage(limit int64) string {
	return fmt.Sprintf("max memory exceeded (%d bytes)", limit)
}

type MaxMemoryError struct {
	Limit     int64
	Requested int64
}

func (e MaxMemoryError) Error() string {
	return MaxMemoryMessage(e.Limit)
}

// Charge records n more bytes, failing without recording anything when the
// ceiling would be crossed.
func (b *Budget) Charge(n int64) error {
	if b == nil || n <= 0 {
		return nil
	}
	if b.limit > 0 && b.used+n > b.limit {
		return MaxMemoryError{Limit: b.limit, Requested: n}
	}
	b.used += n
	return nil
}

// Reset forgets everything charged so far.
func (b *Budget) Reset() {
	if b == nil {
		return
	}
	b.used = 0
}
