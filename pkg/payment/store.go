package payment

import (
	"errors"
	"fmt"
	"sync"
)

var ErrPaymentNotFound = errors.New("payment not found")

// Store keeps payments in memory, in the order they were added, for the
// lifetime of the process.
type Store struct {
	mu       sync.RWMutex
	payments []Payment
	byID     map[string]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]int),
	}
}

// Add appends a payment. IDs must be unique.
func (s *Store) Add(p Payment) error {
	if p.ID == "" {
		return fmt.Errorf("payment id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[p.ID]; exists {
		return fmt.Errorf("payment '%s' already exists", p.ID)
	}

	s.byID[p.ID] = len(s.payments)
	s.payments = append(s.payments, p)
	return nil
}

// Get returns the payment with the given ID, or ErrPaymentNotFound.
func (s *Store) Get(id string) (Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return Payment{}, fmt.Errorf("%w: %s", ErrPaymentNotFound, id)
	}
	return s.payments[idx], nil
}

// List returns every payment in creation order.
func (s *Store) List() []Payment {
	return s.filter(func(Payment) bool { return true })
}

// ListByStatus returns payments with the given status, in creation order.
func (s *Store) ListByStatus(status Status) []Payment {
	return s.filter(func(p Payment) bool { return p.Status == status })
}

// ListByMerchant returns payments made to one merchant, in creation order.
func (s *Store) ListByMerchant(merchantID string) []Payment {
	return s.filter(func(p Payment) bool { return p.MerchantID == merchantID })
}

// Count returns the number of stored payments.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments)
}

// Stats summarises everything currently stored.
func (s *Store) Stats() Stats {
	return Summarize(s.List())
}

func (s *Store) filter(keep func(Payment) bool) []Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Payment, 0, len(s.payments))
	for _, p := range s.payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
