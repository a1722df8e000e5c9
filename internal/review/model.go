package review

import "time"

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateReviewRequest payload for posting a review.
// swagger:model CreateReviewRequest
type CreateReviewRequest struct {
	ProductID string `json:"productId" validate:"required"`
	UserID    string `json:"userId"    validate:"required"`
	Rating    int    `json:"rating"    validate:"required,min=1,max=5"`
	Comment   string `json:"comment"   validate:"required"`
}
