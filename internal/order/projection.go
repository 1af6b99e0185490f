package order

import (
	"sort"
	"time"
)

// ActiveStatuses are the statuses a kitchen still has work to do on.
var ActiveStatuses = []Status{StatusOrdered, StatusPreparing}

// ChefFilter is the chef board's live subset: active orders, oldest
// first, so the queue is fair.
func ChefFilter() Filter {
	return Filter{Statuses: ActiveStatuses, Ascending: true}
}

// CustomerFilter is one user's full order history, newest first.
func CustomerFilter(userID string) Filter {
	return Filter{UserID: userID, Ascending: false}
}

// ChefQueue recomputes the chef projection from a full snapshot. The
// snapshot may arrive pre-filtered (from a subscription built on
// ChefFilter) or raw; either way the output contains only active orders
// in oldest-first creation order.
func ChefQueue(orders []Order) []Order {
	out := make([]Order, 0, len(orders))
	f := ChefFilter()
	for _, o := range orders {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// CustomerHistory recomputes one user's projection from a full snapshot.
func CustomerHistory(orders []Order, userID string) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ChefEntry is a chef-queue order annotated with how long it has been
// waiting, re-evaluated against the shared clock tick for the urgency
// display.
type ChefEntry struct {
	Order
	ElapsedSeconds int64 `json:"elapsedSeconds"`
}

// AnnotateElapsed stamps each queue entry with the time elapsed since
// its creation.
func AnnotateElapsed(orders []Order, now time.Time) []ChefEntry {
	out := make([]ChefEntry, len(orders))
	for i, o := range orders {
		elapsed := now.Sub(o.CreatedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		out[i] = ChefEntry{Order: o, ElapsedSeconds: int64(elapsed / time.Second)}
	}
	return out
}
