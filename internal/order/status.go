package order

import "fmt"

// Status is the order lifecycle state. The literal strings are the wire
// and storage representation; any status-update caller sees exactly
// these five values.
type Status string

const (
	StatusOrdered   Status = "Ordered"
	StatusPreparing Status = "Preparing"
	StatusReady     Status = "Ready"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

// transitions is the full set of legal moves. Cancellation is only
// reachable before the kitchen finishes: once an order is Ready the food
// is already made.
var transitions = map[Status][]Status{
	StatusOrdered:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether moving from one status to another is
// legal. Self-transitions, skips and backward moves are all denied.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition leaves the status.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// ParseStatus validates a raw string against the five-state enumeration.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusOrdered, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}
