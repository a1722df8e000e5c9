package product

import "time"

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Description string `json:"description,omitempty"`
	// We store prices as strings to avoid rounding errors (NUMERIC in Postgres)
	Price    string   `json:"price"`
	OldPrice string   `json:"oldPrice,omitempty"`
	Images   []string `json:"image"`
	Rating   float64  `json:"rating"`
	AuthorID string   `json:"author"`
	// Joined from the authors table on reads
	AuthorEmail string    `json:"authorEmail,omitempty"`
	AuthorName  string    `json:"authorName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	Products      []Product `json:"products"`
	TotalPages    int       `json:"totalPages"`
	TotalProducts int       `json:"totalProducts"`
}
