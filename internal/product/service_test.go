package product

import (
	"errors"
	"testing"

	"github.com/ordena/restaurant-pos-backend/internal/storage"
)

type failingBlobStore struct{}

func (failingBlobStore) Upload(name string, data []byte) (string, error) {
	return "", storage.ErrUploadFailed
}

type recordingBlobStore struct {
	name string
	size int
}

func (r *recordingBlobStore) Upload(name string, data []byte) (string, error) {
	r.name = name
	r.size = len(data)
	return "/uploads/" + name, nil
}

func TestCreate_UploadFailureAbortsCreate(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	svc := NewService(repo, failingBlobStore{})

	_, err := svc.Create(Product{
		Title:    "Tom Yum",
		Category: "starter",
		Price:    1800,
	}, []byte("jpegdata"), "tomyum.jpg")
	if !errors.Is(err, storage.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}

	all, _ := repo.List()
	if len(all) != 0 {
		t.Fatalf("no product row may exist after a failed upload, got %d", len(all))
	}
}

func TestCreate_SetsPhotoURLAndID(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	blobs := &recordingBlobStore{}
	svc := NewService(repo, blobs)

	created, err := svc.Create(Product{
		Title:    "Pad Thai",
		Category: "fastfood",
		Price:    2200,
	}, []byte("jpegdata"), "padthai.jpg")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if created.Photo == nil || *created.Photo != "/uploads/padthai.jpg" {
		t.Fatalf("photo url not set: %v", created.Photo)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("created_at not stamped")
	}
	if blobs.name != "padthai.jpg" || blobs.size != len("jpegdata") {
		t.Fatalf("upload not invoked with the expected file: %q %d", blobs.name, blobs.size)
	}
}

func TestCreate_WithoutPhotoSkipsUpload(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	svc := NewService(repo, failingBlobStore{})

	created, err := svc.Create(Product{
		Title:    "Iced Tea",
		Category: "drink",
		Price:    600,
	}, nil, "")
	if err != nil {
		t.Fatalf("create without photo must not touch the blob store: %v", err)
	}
	if created.Photo != nil {
		t.Fatalf("unexpected photo url %v", *created.Photo)
	}
}

func TestCreateAndDelete_PublishToSubscribers(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	svc := NewService(repo, &recordingBlobStore{})

	sub := svc.Subscribe()
	defer sub.Unsubscribe()
	if snap := <-sub.C; len(snap) != 0 {
		t.Fatalf("expected empty initial catalog, got %v", snap)
	}

	created, err := svc.Create(Product{Title: "Mango Sticky Rice", Category: "dessert", Price: 1500}, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap := <-sub.C; len(snap) != 1 || snap[0].Title != "Mango Sticky Rice" {
		t.Fatalf("catalog snapshot after create: %v", snap)
	}

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if snap := <-sub.C; len(snap) != 0 {
		t.Fatalf("catalog snapshot after delete: %v", snap)
	}
}

func TestDelete_MissingProduct(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil), &recordingBlobStore{})
	if err := svc.Delete(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range []string{"starter", "fastfood", "drink", "dessert"} {
		if !ValidCategory(c) {
			t.Errorf("category %q should be accepted", c)
		}
	}
	for _, c := range []string{"", "Starter", "snack", "FASTFOOD"} {
		if ValidCategory(c) {
			t.Errorf("category %q should be rejected", c)
		}
	}
}
