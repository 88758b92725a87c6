package limits

import (
	"errors"
	"testing"
)

func TestBudgetCharge(t *testing.T) {
	b := NewBudget(10)
	if err := b.Charge(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Charge(6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := b.Charge(1)
	var memErr MaxMemoryError
	if !errors.As(err, &memErr) {
		t.Fatalf("expected MaxMemoryError, got %v", err)
	}
	if memErr.Limit != 10 || memErr.Requested != 1 {
		t.Fatalf("unexpected error fields: %+v", memErr)
	}
	if b.Used() != 10 {
		t.Fatalf("failed charge must not be recorded, used=%d", b.Used())
	}
}

func TestBudgetUnlimitedStillCounts(t *testing.T) {
	b := NewBudget(0)
	if err := b.Charge(1_000_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Used() != 1_000_000 {
		t.Fatalf("expected usage to be tracked, got %d", b.Used())
	}
	b.Reset()
	if b.Used() != 0 {
		t.Fatalf("expected reset usage, got %d", b.Used())
	}
}

func TestBudgetNil(t *testing.T) {
	var b *Budget
	if err := b.Charge(5); err != nil {
		t.Fatalf("nil budget should accept charges: %v", err)
	}
	if b.Limit() != 0 || b.Used() != 0 {
		t.Fatal("nil budget should report zeros")
	}
	b.Reset()
}

func TestMaxMemoryMessage(t *testing.T) {
	if got := MaxMemoryMessage(64); got != "max memory exceeded (64 bytes)" {
		t.Fatalf("unexpected message %q", got)
	}
}
