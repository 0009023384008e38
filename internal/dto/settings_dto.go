package dto

import "github.com/google/uuid"

type UpdateSettingsRequest struct {
	SMTPHost         *string `json:"smtp_host"`
	SMTPPort         *int    `json:"smtp_port"`
	SMTPUser         *string `json:"smtp_user"`
	SMTPPassword     *string `json:"smtp_password"`
	GmailUser        *string `json:"gmail_user"`
	GmailAppPassword *string `json:"gmail_app_password"`
	FromEmail        *string `json:"from_email" binding:"omitempty,email"`
	OverdueDays      *int    `json:"overdue_days" binding:"omitempty,min=1,max=365"`
	Templates        *string `json:"templates"`
}

// TestEmailRequest fires one message using the supplied, unsaved credentials.
type TestEmailRequest struct {
	SMTPHost     string `json:"smtp_host" binding:"required"`
	SMTPPort     int    `json:"smtp_port" binding:"required"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	FromEmail    string `json:"from_email" binding:"required,email"`
	ToEmail      string `json:"to_email" binding:"required,email"`
}

type SettingsQuery struct {
	LibraryID *uuid.UUID `form:"library_id"`
}
