package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateBorrowRequest struct {
	BookID uuid.UUID `json:"book_id" binding:"required"`
}

type DecideRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

const (
	FeedKindBorrow = "borrow"
	FeedKindReturn = "return"
)

// FeedItem is one entry of the unified borrow+return feed the SPA renders.
type FeedItem struct {
	Kind      string     `json:"kind"`
	ID        uuid.UUID  `json:"id"`
	LibraryID uuid.UUID  `json:"library_id"`
	BookID    uuid.UUID  `json:"book_id"`
	BookTitle string     `json:"book_title"`
	UserID    uuid.UUID  `json:"user_id"`
	UserName  string     `json:"user_name"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	DueAt     *time.Time `json:"due_at,omitempty"`
}

type RequestFilter struct {
	Status    string     `form:"status"`
	LibraryID *uuid.UUID `form:"library_id"`
}
