package dto

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name      string    `json:"name" binding:"required,min=2,max=100"`
	LibraryID uuid.UUID `json:"library_id" binding:"required"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

type CategoryFilter struct {
	LibraryID *uuid.UUID `form:"library_id"`
	Search    string     `form:"search"`
}
