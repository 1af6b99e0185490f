package product

import "time"

// Product is a menu entry. Prices are minor currency units. Products are
// immutable after creation except for hard delete; orders keep their own
// frozen copies of title and price, so deleting a product never touches
// order history.
type Product struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       int       `json:"price"`
	Photo       *string   `json:"photo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AllowedCategories contains the supported menu categories.
var AllowedCategories = []string{
	"starter",
	"fastfood",
	"drink",
	"dessert",
}

func ValidCategory(category string) bool {
	for _, c := range AllowedCategories {
		if category == c {
			return true
		}
	}
	return false
}
