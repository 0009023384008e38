package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Book struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LibraryID uuid.UUID `gorm:"type:uuid;index;not null" json:"library_id"`
	Library   Library   `gorm:"constraint:OnDelete:CASCADE" json:"library,omitempty"`

	Title       string  `gorm:"size:255;not null" json:"title"`
	Author      string  `gorm:"size:255;not null" json:"author"`
	ISBN        string  `gorm:"size:20" json:"isbn"`
	PublishYear int     `json:"publish_year"`
	Publisher   string  `gorm:"size:255" json:"publisher"`
	CoverURL    *string `gorm:"type:text" json:"cover_url,omitempty"`
	SummaryEN   *string `gorm:"type:text" json:"summary_en,omitempty"`
	SummaryID   *string `gorm:"type:text" json:"summary_id,omitempty"`

	// Categories attached to a book must belong to the book's library.
	Categories []Category `gorm:"many2many:book_categories" json:"categories,omitempty"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}

func (b *Book) IsDeleted() bool {
	return b.DeletedAt != nil
}
