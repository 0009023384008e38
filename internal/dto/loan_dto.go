package dto

import "github.com/google/uuid"

// AssignLoanRequest hands a book to a member directly, skipping the borrow
// request flow. Manager only.
type AssignLoanRequest struct {
	BookID uuid.UUID `json:"book_id" binding:"required"`
	UserID uuid.UUID `json:"user_id" binding:"required"`
	// DueDays overrides the library's overdue policy when > 0.
	DueDays int `json:"due_days"`
}

type LoanFilter struct {
	Status    string     `form:"status"`
	LibraryID *uuid.UUID `form:"library_id"`
	Active    bool       `form:"active"`
}
