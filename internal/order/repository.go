package order

import (
	"sort"
	"sync"
	"time"
)

// Repository defines persistence operations for orders. UpdateStatus is
// conditional on the status the caller last read: implementations must
// apply the write atomically only while the stored status still equals
// `from`, returning ErrStatusConflict otherwise. That check-and-set is
// what keeps a stale actor from reviving an order another staff member
// already advanced.
type Repository interface {
	Create(o Order) (Order, error)
	GetByID(id int) (Order, error)
	List(f Filter) ([]Order, error)
	UpdateStatus(id int, from, to Status, at time.Time) error
}

// InMemoryRepository backs tests and local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Order
	nextID  int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.SubmissionID != "" {
		for _, existing := range r.storage {
			if existing.SubmissionID == o.SubmissionID {
				return existing, nil
			}
		}
	}
	o.ID = r.nextID
	r.nextID++
	r.storage = append(r.storage, o)
	return o, nil
}

func (r *InMemoryRepository) GetByID(id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.storage {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) List(f Filter) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.storage {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			if f.Ascending {
				return out[i].ID < out[j].ID
			}
			return out[i].ID > out[j].ID
		}
		if f.Ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(id int, from, to Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			if r.storage[i].Status != from {
				return ErrStatusConflict
			}
			r.storage[i].Status = to
			r.storage[i].UpdatedAt = at
			return nil
		}
	}
	return ErrNotFound
}
