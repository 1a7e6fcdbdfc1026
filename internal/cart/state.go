package cart

import "github.com/google/uuid"

// Entry is one (product, quantity) pair held in a session cart.
type Entry struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// State is the ordered content of one session's cart. Entries keep the
// insertion order of their first add; index-based line references resolve
// against that order.
type State []Entry

// Normalize drops malformed entries (nil product id or non-positive
// quantity) while preserving order.
func (s State) Normalize() State {
	cleaned := make(State, 0, len(s))
	for _, entry := range s {
		if entry.ProductID == uuid.Nil || entry.Quantity <= 0 {
			continue
		}
		cleaned = append(cleaned, entry)
	}
	return cleaned
}

// Add increments the quantity reserved for productID, appending a new entry
// on first add.
func (s State) Add(productID uuid.UUID) State {
	for i := range s {
		if s[i].ProductID == productID {
			s[i].Quantity++
			return s
		}
	}
	return append(s, Entry{ProductID: productID, Quantity: 1})
}

// Remove decrements the quantity reserved for productID, deleting the entry
// when it reaches zero. Unknown products are a no-op.
func (s State) Remove(productID uuid.UUID) State {
	for i := range s {
		if s[i].ProductID != productID {
			continue
		}
		s[i].Quantity--
		if s[i].Quantity <= 0 {
			return append(s[:i:i], s[i+1:]...)
		}
		return s
	}
	return s
}

// QuantityOf returns the reserved quantity for productID, zero if absent.
func (s State) QuantityOf(productID uuid.UUID) int {
	for _, entry := range s {
		if entry.ProductID == productID {
			return entry.Quantity
		}
	}
	return 0
}

// IsEmpty reports whether the cart holds no entries.
func (s State) IsEmpty() bool {
	return len(s) == 0
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}
