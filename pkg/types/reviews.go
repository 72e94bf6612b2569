package types

import "time"

// Review is a customer review embedded on a product row.
type Review struct {
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Reviews is the jsonb-backed review list on a product.
type Reviews []Review

// AverageRating returns the mean rating across reviews, zero when empty.
func (r Reviews) AverageRating() float64 {
	if len(r) == 0 {
		return 0
	}
	var sum int
	for _, review := range r {
		sum += review.Rating
	}
	return float64(sum) / float64(len(r))
}
