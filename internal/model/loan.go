package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusCancelled = "cancelled"
)

const (
	LoanStatusActive          = "active"
	LoanStatusReturnRequested = "return_requested"
	LoanStatusReturned        = "returned"
	LoanStatusReturnRejected  = "return_rejected"
)

// BorrowRequest is a user's request to borrow a book, decided by the parent
// library's staff. The partial unique index keeps at most one pending request
// per (book, user).
type BorrowRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LibraryID uuid.UUID `gorm:"type:uuid;index;not null" json:"library_id"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_pending_request,where:status = 'pending'" json:"book_id"`
	Book      Book      `gorm:"constraint:OnDelete:CASCADE" json:"book,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_pending_request,where:status = 'pending'" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	Status      string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RequestedAt time.Time  `gorm:"autoCreateTime" json:"requested_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

func (r *BorrowRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// Loan is an open or closed lending of a book. The partial unique index on
// book_id WHERE returned_at IS NULL is what ultimately enforces the
// one-active-loan-per-book rule under concurrent approvals.
type Loan struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LibraryID uuid.UUID `gorm:"type:uuid;index;not null" json:"library_id"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_active_loan,where:returned_at IS NULL" json:"book_id"`
	Book      Book      `gorm:"constraint:OnDelete:CASCADE" json:"book,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	Status     string     `gorm:"size:20;not null;default:'active';index" json:"status"`
	BorrowedAt time.Time  `gorm:"not null" json:"borrowed_at"`
	DueAt      time.Time  `gorm:"not null" json:"due_at"`
	ReturnedAt *time.Time `gorm:"index" json:"returned_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Loan) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}
