package scope_test

import (
	"testing"

	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/scope"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func userWithRole(role string, owned, assigned []model.Library) *model.User {
	return &model.User{
		ID:             uuid.New(),
		Role:           model.Role{Name: role},
		OwnedLibraries: owned,
		Libraries:      assigned,
	}
}

func lib() model.Library {
	id, _ := uuid.NewV7()
	return model.Library{ID: id}
}

func TestScopeAllows(t *testing.T) {
	owned := lib()
	assigned := lib()
	foreign := lib()

	admin := scope.FromUser(userWithRole(model.RoleAdmin, nil, nil))
	librarian := scope.FromUser(userWithRole(model.RoleLibrarian, []model.Library{owned}, []model.Library{assigned}))
	member := scope.FromUser(userWithRole(model.RoleUser, nil, []model.Library{assigned}))

	tests := []struct {
		name    string
		sc      *scope.Scope
		library uuid.UUID
		kind    scope.Kind
		want    bool
	}{
		{"admin reads anything", admin, foreign.ID, scope.Read, true},
		{"admin writes anything", admin, foreign.ID, scope.Write, true},
		{"admin owns anything", admin, foreign.ID, scope.OwnerOnly, true},

		{"librarian reads owned", librarian, owned.ID, scope.Read, true},
		{"librarian writes owned", librarian, owned.ID, scope.Write, true},
		{"librarian owns owned", librarian, owned.ID, scope.OwnerOnly, true},
		{"librarian writes assigned", librarian, assigned.ID, scope.Write, true},
		{"librarian does not own assigned", librarian, assigned.ID, scope.OwnerOnly, false},
		{"librarian blind to foreign", librarian, foreign.ID, scope.Read, false},

		{"member reads assigned", member, assigned.ID, scope.Read, true},
		{"member cannot write assigned", member, assigned.ID, scope.Write, false},
		{"member blind to foreign", member, foreign.ID, scope.Read, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sc.Allows(tt.library, tt.kind))
		})
	}
}

func TestScopeVisibleDeduplicates(t *testing.T) {
	shared := lib()
	user := userWithRole(model.RoleLibrarian, []model.Library{shared}, []model.Library{shared})

	visible := scope.FromUser(user).Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, shared.ID, visible[0])
}

func TestScopeFilter(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Category{}))

	inScope := lib()
	outScope := lib()
	require.NoError(t, db.Create(&model.Category{LibraryID: inScope.ID, Name: "Fiksi"}).Error)
	require.NoError(t, db.Create(&model.Category{LibraryID: outScope.ID, Name: "Sejarah"}).Error)

	count := func(sc *scope.Scope) int64 {
		var n int64
		require.NoError(t, sc.Filter(db.Model(&model.Category{}), "library_id").Count(&n).Error)
		return n
	}

	admin := scope.FromUser(userWithRole(model.RoleAdmin, nil, nil))
	assert.Equal(t, int64(2), count(admin))

	member := scope.FromUser(userWithRole(model.RoleUser, nil, []model.Library{inScope}))
	assert.Equal(t, int64(1), count(member))

	// No memberships means no rows, never all rows.
	stranger := scope.FromUser(userWithRole(model.RoleUser, nil, nil))
	assert.Equal(t, int64(0), count(stranger))
}
