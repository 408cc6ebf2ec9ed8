package chat

import "time"

// Conversation identifies a transient chat scoped to exactly one product.
type Conversation struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}
