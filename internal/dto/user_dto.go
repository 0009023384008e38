package dto

import "github.com/google/uuid"

type CreateUserRequest struct {
	Name       string      `json:"name" binding:"required,min=2,max=100"`
	Email      string      `json:"email" binding:"required,email"`
	Password   string      `json:"password" binding:"required,min=8"`
	Role       string      `json:"role" binding:"required,oneof=admin librarian user"`
	LibraryIDs []uuid.UUID `json:"library_ids"`
}

type UpdateUserRequest struct {
	Name       *string     `json:"name" binding:"omitempty,min=2,max=100"`
	Email      *string     `json:"email" binding:"omitempty,email"`
	Password   *string     `json:"password" binding:"omitempty,min=8"`
	Role       *string     `json:"role" binding:"omitempty,oneof=admin librarian user"`
	IsActive   *bool       `json:"is_active"`
	LibraryIDs []uuid.UUID `json:"library_ids"`
}

type UserFilter struct {
	Search string `form:"search"`
}
