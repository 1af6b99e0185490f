package order

import (
	"context"
	"errors"
	"time"

	"github.com/ordena/restaurant-pos-backend/internal/cart"
	"github.com/ordena/restaurant-pos-backend/internal/events"
	"github.com/ordena/restaurant-pos-backend/internal/logging"
	"github.com/ordena/restaurant-pos-backend/internal/metrics"
	"github.com/ordena/restaurant-pos-backend/internal/stream"
)

// Service owns order submission, status lifecycle enforcement and the
// live order stream.
type Service struct {
	repo      Repository
	hub       *stream.Hub[Order]
	publisher *events.Publisher
	now       func() time.Time
}

func NewService(repo Repository, publisher *events.Publisher) *Service {
	hub := stream.NewHub[Order]()
	hub.SetGaugeHooks(metrics.StreamSubscribers.Inc, metrics.StreamSubscribers.Dec)
	return &Service{
		repo:      repo,
		hub:       hub,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit persists a new order from a frozen cart snapshot. The snapshot
// is already a copy, so cart edits racing the submission cannot reach
// the persisted payload. The caller clears the cart only after Submit
// returns nil; a failure here leaves the cart exactly as it was.
//
// submissionID deduplicates client retries: replaying a submission id
// returns the order it originally created instead of inserting again.
func (s *Service) Submit(userID string, snapshot []cart.Item, notes, submissionID string) (Order, error) {
	if userID == "" {
		return Order{}, ErrNotAuthenticated
	}
	if len(snapshot) == 0 {
		return Order{}, ErrEmptyCart
	}

	items := make([]Item, len(snapshot))
	total := 0
	for i, line := range snapshot {
		items[i] = Item{
			ProductID: line.ProductID,
			Title:     line.Title,
			Price:     line.Price,
			Quantity:  line.Quantity,
		}
		total += line.Price * line.Quantity
	}

	now := s.now()
	created, err := s.repo.Create(Order{
		UserID:       userID,
		Items:        items,
		Total:        total,
		Status:       StatusOrdered,
		Notes:        notes,
		SubmissionID: submissionID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Order{}, err
	}

	metrics.OrdersSubmitted.Inc()
	logging.Log(logging.Fields{Service: "order", Step: "submit", OrderID: created.ID, UserID: userID, Status: string(created.Status)})
	s.publish(events.Event{Type: events.TypeOrderCreated, OrderID: created.ID, UserID: userID, Status: string(created.Status), Total: created.Total})
	s.hub.Publish()
	return created, nil
}

// UpdateStatus validates the requested transition against the
// authoritative stored status and applies it with a conditional write.
// Losing the write race once triggers a single re-read and re-validation
// so a late actor of a now-illegal move is always rejected; a second
// lost race is treated the same way.
func (s *Service) UpdateStatus(id int, to Status) (Order, error) {
	for attempt := 0; attempt < 2; attempt++ {
		current, err := s.repo.GetByID(id)
		if err != nil {
			return Order{}, err
		}
		if !CanTransition(current.Status, to) {
			metrics.RejectedTransitions.Inc()
			return Order{}, ErrInvalidTransition
		}

		err = s.repo.UpdateStatus(id, current.Status, to, s.now())
		if err == nil {
			metrics.StatusTransitions.WithLabelValues(string(current.Status), string(to)).Inc()
			logging.Log(logging.Fields{Service: "order", Step: "update_status", OrderID: id, Status: string(to)})
			s.publish(events.Event{Type: events.TypeOrderStatusChanged, OrderID: id, UserID: current.UserID, Status: string(to)})
			s.hub.Publish()
			updated := current
			updated.Status = to
			return updated, nil
		}
		if errors.Is(err, ErrStatusConflict) {
			continue
		}
		return Order{}, err
	}
	metrics.RejectedTransitions.Inc()
	return Order{}, ErrInvalidTransition
}

func (s *Service) GetByID(id int) (Order, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(f Filter) ([]Order, error) {
	return s.repo.List(f)
}

// Subscribe opens a live view of the orders matching the filter. The
// subscription redelivers the full matching set on every change.
func (s *Service) Subscribe(f Filter) *stream.Subscription[Order] {
	return s.hub.Subscribe(func() ([]Order, error) {
		return s.repo.List(f)
	})
}

func (s *Service) publish(evt events.Event) {
	if !s.publisher.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, evt); err != nil {
		logging.Log(logging.Fields{Service: "order", Step: "publish_event", OrderID: evt.OrderID, Error: err.Error()})
	}
}
