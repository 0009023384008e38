package dto

import "github.com/google/uuid"

type CreateBookRequest struct {
	LibraryID   uuid.UUID   `json:"library_id" binding:"required"`
	Title       string      `json:"title" binding:"required,min=1,max=255"`
	Author      string      `json:"author" binding:"required,min=1,max=255"`
	ISBN        string      `json:"isbn" binding:"omitempty,max=20"`
	PublishYear int         `json:"publish_year"`
	Publisher   string      `json:"publisher"`
	SummaryEN   *string     `json:"summary_en"`
	SummaryID   *string     `json:"summary_id"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

type UpdateBookRequest struct {
	LibraryID   *uuid.UUID  `json:"library_id"`
	Title       *string     `json:"title" binding:"omitempty,min=1,max=255"`
	Author      *string     `json:"author" binding:"omitempty,min=1,max=255"`
	ISBN        *string     `json:"isbn" binding:"omitempty,max=20"`
	PublishYear *int        `json:"publish_year"`
	Publisher   *string     `json:"publisher"`
	SummaryEN   *string     `json:"summary_en"`
	SummaryID   *string     `json:"summary_id"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

type BookFilter struct {
	LibraryID  *uuid.UUID `form:"library_id"`
	CategoryID *uuid.UUID `form:"category_id"`
	Search     string     `form:"search"`
}

type GenerateSummaryRequest struct {
	Name   string `json:"name" binding:"required"`
	Author string `json:"author" binding:"required"`
}

type SummaryResponse struct {
	SummaryEN string `json:"summary_en"`
	SummaryID string `json:"summary_id"`
}
