package cart

import "sync"

// Sessions keys each authenticated user's cart by user id. Carts are
// created lazily on first touch and dropped on logout or submission
// teardown; nothing here is persisted.
type Sessions struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewSessions() *Sessions {
	return &Sessions{carts: make(map[string]*Cart)}
}

// With runs fn against the user's cart while holding the registry lock,
// so individual cart mutations run to completion without interleaving.
func (s *Sessions) With(userID string, fn func(c *Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		c = New()
		s.carts[userID] = c
	}
	fn(c)
}

// Snapshot returns a frozen copy of the user's cart lines and its total.
func (s *Sessions) Snapshot(userID string) ([]Item, int) {
	var items []Item
	var total int
	s.With(userID, func(c *Cart) {
		items = c.Items()
		total = c.Total()
	})
	return items, total
}

// Clear empties the user's cart.
func (s *Sessions) Clear(userID string) {
	s.With(userID, func(c *Cart) { c.Clear() })
}

// Drop discards the user's cart entirely (logout).
func (s *Sessions) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}
