package product

import (
	"time"

	"github.com/ordena/restaurant-pos-backend/internal/storage"
	"github.com/ordena/restaurant-pos-backend/internal/stream"
)

// Service orchestrates catalog operations and owns the live catalog
// stream that both the cashier management view and the customer menu
// subscribe to.
type Service struct {
	repo  Repository
	blobs storage.BlobStore
	hub   *stream.Hub[Product]
	now   func() time.Time
}

func NewService(repo Repository, blobs storage.BlobStore) *Service {
	return &Service{
		repo:  repo,
		blobs: blobs,
		hub:   stream.NewHub[Product](),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List() ([]Product, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

// Create persists a new product. When photo bytes are supplied the blob
// upload happens first; an upload failure aborts the whole operation so
// no product row exists without the photo it was meant to have.
func (s *Service) Create(p Product, photo []byte, photoName string) (Product, error) {
	if len(photo) > 0 {
		url, err := s.blobs.Upload(photoName, photo)
		if err != nil {
			return Product{}, err
		}
		p.Photo = &url
	}
	p.CreatedAt = s.now()

	created, err := s.repo.Create(p)
	if err != nil {
		return Product{}, err
	}
	s.hub.Publish()
	return created, nil
}

// Delete hard-deletes the product. Existing orders keep their frozen
// item snapshots, so there is nothing to cascade.
func (s *Service) Delete(id int) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.hub.Publish()
	return nil
}

// Subscribe opens a live view of the full catalog.
func (s *Service) Subscribe() *stream.Subscription[Product] {
	return s.hub.Subscribe(s.repo.List)
}
