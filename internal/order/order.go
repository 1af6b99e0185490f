package order

import (
	"errors"
	"time"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("order not found")

	// ErrStatusConflict is a repository-level signal that the stored
	// status changed between read and conditional write. The service
	// re-reads and re-validates; callers never see it.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// Item is one frozen line of a submitted order. Title and price are the
// values the cart captured at add time; they never track later catalog
// changes.
type Item struct {
	ProductID int    `json:"productId"`
	Title     string `json:"title"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Order is a submitted cart tracked through the status lifecycle. Items
// and Total are immutable after creation; only Status and UpdatedAt
// change.
type Order struct {
	ID           int       `json:"id"`
	UserID       string    `json:"userId"`
	Items        []Item    `json:"items"`
	Total        int       `json:"total"`
	Status       Status    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	SubmissionID string    `json:"submissionId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Filter selects a live subset of the order collection. A nil/empty
// status set matches every status; an empty UserID matches every user.
// Results are ordered by creation time, ascending when Ascending is set
// (chef queue fairness), newest-first otherwise (customer history).
type Filter struct {
	Statuses  []Status
	UserID    string
	Ascending bool
}

// Matches reports whether the order belongs in the filtered set.
func (f Filter) Matches(o Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if o.Status == s {
			return true
		}
	}
	return false
}
