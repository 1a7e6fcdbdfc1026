package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestStateAddKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	first := uuid.New()
	second := uuid.New()

	var state State
	state = state.Add(first)
	state = state.Add(second)
	state = state.Add(first)

	if len(state) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(state))
	}
	if state[0].ProductID != first || state[0].Quantity != 2 {
		t.Fatalf("unexpected first entry %+v", state[0])
	}
	if state[1].ProductID != second || state[1].Quantity != 1 {
		t.Fatalf("unexpected second entry %+v", state[1])
	}
}

func TestStateRemoveDeletesAtZero(t *testing.T) {
	t.Parallel()

	pid := uuid.New()
	state := State{}.Add(pid).Add(pid)

	state = state.Remove(pid)
	if state.QuantityOf(pid) != 1 {
		t.Fatalf("expected quantity 1 after remove, got %d", state.QuantityOf(pid))
	}

	state = state.Remove(pid)
	if !state.IsEmpty() {
		t.Fatalf("expected empty state, got %+v", state)
	}

	// removing an absent product is a no-op
	state = state.Remove(uuid.New())
	if !state.IsEmpty() {
		t.Fatalf("expected state to stay empty")
	}
}

func TestStateNormalizeDropsMalformedEntries(t *testing.T) {
	t.Parallel()

	valid := uuid.New()
	state := State{
		{ProductID: valid, Quantity: 2},
		{ProductID: uuid.Nil, Quantity: 3},
		{ProductID: uuid.New(), Quantity: 0},
		{ProductID: uuid.New(), Quantity: -1},
	}

	cleaned := state.Normalize()
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 surviving entry, got %d", len(cleaned))
	}
	if cleaned[0].ProductID != valid {
		t.Fatalf("wrong entry survived: %+v", cleaned[0])
	}
}

func TestMemoryStoreCleansOnGet(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	pid := uuid.New()

	if err := store.Set(ctx, "sess", State{
		{ProductID: pid, Quantity: 1},
		{ProductID: uuid.New(), Quantity: -4},
	}); err != nil {
		t.Fatalf("set: %v", err)
	}

	state, err := store.Get(ctx, "sess")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(state) != 1 || state[0].ProductID != pid {
		t.Fatalf("expected cleaned state, got %+v", state)
	}

	if err := store.Clear(ctx, "sess"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	state, err = store.Get(ctx, "sess")
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if !state.IsEmpty() {
		t.Fatalf("expected empty state after clear, got %+v", state)
	}
}
