package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Library struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	OwnerID     *uuid.UUID `gorm:"type:uuid" json:"owner_id,omitempty"`
	Owner       *User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"owner,omitempty"`
	Settings    *Settings  `gorm:"constraint:OnDelete:CASCADE" json:"settings,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Library) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}

const DefaultOverdueDays = 14

// Settings holds per-library mail provider configuration and loan policy.
// Exactly one row per library; created together with the library and lazily
// recreated if missing.
type Settings struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LibraryID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"library_id"`

	SMTPHost         string `gorm:"size:255" json:"smtp_host"`
	SMTPPort         int    `json:"smtp_port"`
	SMTPUser         string `gorm:"size:255" json:"smtp_user"`
	SMTPPassword     string `gorm:"size:255" json:"-"`
	GmailUser        string `gorm:"size:255" json:"gmail_user"`
	GmailAppPassword string `gorm:"size:255" json:"-"`
	FromEmail        string `gorm:"size:255" json:"from_email"`

	OverdueDays int    `gorm:"default:14" json:"overdue_days"`
	Templates   string `gorm:"type:text" json:"templates"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Settings) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
