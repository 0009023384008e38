// Package scope computes, per authenticated user, the set of library IDs the
// user may read, write, or own. It is the only place in the codebase allowed
// to append library_id predicates to queries; every repository takes a *Scope
// and calls Filter instead of filtering by tenant itself.
package scope

import (
	"anoa.com/perpustakaan/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kind classifies an operation for scope resolution.
type Kind int

const (
	Read Kind = iota
	Write
	OwnerOnly
)

type Scope struct {
	role     string
	owned    map[uuid.UUID]struct{}
	assigned map[uuid.UUID]struct{}
}

// FromUser builds a Scope from a user loaded with Role, Libraries and
// OwnedLibraries preloaded.
func FromUser(u *model.User) *Scope {
	s := &Scope{
		role:     u.Role.Name,
		owned:    make(map[uuid.UUID]struct{}, len(u.OwnedLibraries)),
		assigned: make(map[uuid.UUID]struct{}, len(u.Libraries)),
	}
	for _, lib := range u.OwnedLibraries {
		s.owned[lib.ID] = struct{}{}
	}
	for _, lib := range u.Libraries {
		s.assigned[lib.ID] = struct{}{}
	}
	return s
}

func (s *Scope) Role() string {
	return s.role
}

func (s *Scope) IsAdmin() bool {
	return s.role == model.RoleAdmin
}

func (s *Scope) IsLibrarian() bool {
	return s.role == model.RoleLibrarian
}

// Visible returns owned ∪ assigned. For admin the scope is the universe and
// callers must check IsAdmin before relying on this list.
func (s *Scope) Visible() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.owned)+len(s.assigned))
	for id := range s.owned {
		ids = append(ids, id)
	}
	for id := range s.assigned {
		if _, dup := s.owned[id]; !dup {
			ids = append(ids, id)
		}
	}
	return ids
}

// Contains reports whether the library is visible to the user.
func (s *Scope) Contains(libraryID uuid.UUID) bool {
	if s.IsAdmin() {
		return true
	}
	if _, ok := s.owned[libraryID]; ok {
		return true
	}
	_, ok := s.assigned[libraryID]
	return ok
}

// Owns reports whether the user owns the library. Only librarians hold
// ownership by policy; admin passes everywhere.
func (s *Scope) Owns(libraryID uuid.UUID) bool {
	if s.IsAdmin() {
		return true
	}
	_, ok := s.owned[libraryID]
	return ok
}

// Allows resolves the resource gate for one library and operation kind.
func (s *Scope) Allows(libraryID uuid.UUID, kind Kind) bool {
	if s.IsAdmin() {
		return true
	}
	switch kind {
	case Read:
		return s.Contains(libraryID)
	case Write:
		return s.IsLibrarian() && s.Contains(libraryID)
	case OwnerOnly:
		return s.Owns(libraryID)
	default:
		return false
	}
}

// Filter appends the tenant predicate for the given column. Admin scope is a
// no-op; an empty visible set yields a query that matches nothing rather than
// everything.
func (s *Scope) Filter(db *gorm.DB, column string) *gorm.DB {
	if s.IsAdmin() {
		return db
	}
	visible := s.Visible()
	if len(visible) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where(column+" IN ?", visible)
}
