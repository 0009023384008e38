package dto

import "anoa.com/perpustakaan/internal/model"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LibraryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AuthUser struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      string       `json:"role"`
	Libraries []LibraryRef `json:"libraries"`
}

type AuthResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int64    `json:"expires_in"`
	User      AuthUser `json:"user"`
}

func NewAuthUser(user *model.User) AuthUser {
	libraries := make([]LibraryRef, 0, len(user.Libraries)+len(user.OwnedLibraries))
	seen := make(map[string]bool)
	for _, lib := range append(user.OwnedLibraries, user.Libraries...) {
		id := lib.ID.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		libraries = append(libraries, LibraryRef{ID: id, Name: lib.Name})
	}

	return AuthUser{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role.Name,
		Libraries: libraries,
	}
}
