package services

import (
	"net/url"
	"testing"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserListParams(t *testing.T) {
	testCases := []struct {
		name    string
		query   url.Values
		wantErr bool
	}{
		{name: "defaults", query: url.Values{}},
		{name: "role filter", query: url.Values{"role": {"admin"}}},
		{name: "invalid role rejected", query: url.Values{"role": {"superuser"}}, wantErr: true},
		{name: "valid sort", query: url.Values{"sort": {"email"}}},
		{name: "unknown sort rejected", query: url.Values{"sort": {"password"}}, wantErr: true},
		{name: "zero limit rejected", query: url.Values{"limit": {"0"}}, wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUserListParams(tt.query)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, models.ErrValidationFailed, models.AsAPIError(err).Code)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAuthorizeProfileAccess(t *testing.T) {
	admin := models.Principal{ID: 1, Role: models.RoleAdmin}
	user := models.Principal{ID: 2, Role: models.RoleUser}

	assert.True(t, AuthorizeProfileAccess(admin, 2))
	assert.True(t, AuthorizeProfileAccess(user, 2))
	assert.False(t, AuthorizeProfileAccess(user, 3))
}

func TestUserCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	t.Run("hashes password and defaults role", func(t *testing.T) {
		user := &models.User{Name: "Alice", Email: "alice@test.local", Password: "secret123"}
		require.NoError(t, svc.Create(user))
		assert.Equal(t, models.RoleUser, user.Role)
		assert.NotEqual(t, "secret123", user.Password)
		assert.True(t, user.CheckPassword("secret123"))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := svc.Create(&models.User{Name: "Alice 2", Email: "alice@test.local", Password: "secret456"})
		require.Error(t, err)
		assert.Equal(t, models.ErrConflict, models.AsAPIError(err).Code)
	})

	t.Run("missing email rejected", func(t *testing.T) {
		err := svc.Create(&models.User{Name: "Nobody", Password: "secret123"})
		require.Error(t, err)
		assert.Equal(t, models.ErrValidationFailed, models.AsAPIError(err).Code)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		err := svc.Create(&models.User{Email: "bob@test.local", Password: "secret123", Role: "root"})
		require.Error(t, err)
		assert.Equal(t, models.ErrValidationFailed, models.AsAPIError(err).Code)
	})
}

func TestUserAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	require.NoError(t, svc.Create(&models.User{Name: "Alice", Email: "alice@test.local", Password: "secret123"}))

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate("alice@test.local", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "alice@test.local", user.Email)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		_, err := svc.Authenticate("ghost@test.local", "secret123")
		require.Error(t, err)
		assert.Equal(t, models.ErrNotFound, models.AsAPIError(err).Code)
	})

	t.Run("wrong password is unauthenticated", func(t *testing.T) {
		_, err := svc.Authenticate("alice@test.local", "wrong")
		require.Error(t, err)
		assert.Equal(t, models.ErrUnauthenticated, models.AsAPIError(err).Code)
	})
}

func TestUserUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	alice := createTestUser(t, db, "Alice", "alice@test.local", models.RoleUser)
	bob := createTestUser(t, db, "Bob", "bob@test.local", models.RoleUser)
	adminUser := createTestUser(t, db, "Admin", "admin@test.local", models.RoleAdmin)

	admin := models.Principal{ID: adminUser.ID, Role: adminUser.Role}
	principalAlice := models.Principal{ID: alice.ID, Role: alice.Role}

	t.Run("non-admin cannot touch another profile", func(t *testing.T) {
		_, err := svc.Update(principalAlice, bob.ID, UserUpdate{Name: "Hacked"})
		require.Error(t, err)
		assert.Equal(t, models.ErrForbidden, models.AsAPIError(err).Code)
	})

	t.Run("self update changes name", func(t *testing.T) {
		updated, err := svc.Update(principalAlice, alice.ID, UserUpdate{Name: "Alice B"})
		require.NoError(t, err)
		assert.Equal(t, "Alice B", updated.Name)
	})

	t.Run("role change by non-admin silently ignored", func(t *testing.T) {
		updated, err := svc.Update(principalAlice, alice.ID, UserUpdate{Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, updated.Role)
	})

	t.Run("role change by admin applied", func(t *testing.T) {
		updated, err := svc.Update(admin, bob.ID, UserUpdate{Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, updated.Role)
	})

	t.Run("invalid role by admin rejected", func(t *testing.T) {
		_, err := svc.Update(admin, bob.ID, UserUpdate{Role: "root"})
		require.Error(t, err)
		assert.Equal(t, models.ErrValidationFailed, models.AsAPIError(err).Code)
	})

	t.Run("email taken by someone else conflicts", func(t *testing.T) {
		_, err := svc.Update(principalAlice, alice.ID, UserUpdate{Email: "bob@test.local"})
		require.Error(t, err)
		assert.Equal(t, models.ErrConflict, models.AsAPIError(err).Code)
	})

	t.Run("own email is not a conflict", func(t *testing.T) {
		updated, err := svc.Update(principalAlice, alice.ID, UserUpdate{Email: "alice@test.local"})
		require.NoError(t, err)
		assert.Equal(t, "alice@test.local", updated.Email)
	})

	t.Run("password change rehashes", func(t *testing.T) {
		updated, err := svc.Update(principalAlice, alice.ID, UserUpdate{Password: "newsecret"})
		require.NoError(t, err)
		assert.True(t, updated.CheckPassword("newsecret"))
		assert.False(t, updated.CheckPassword("secret123"))
	})

	t.Run("missing user for admin is not found", func(t *testing.T) {
		_, err := svc.Update(admin, 9999, UserUpdate{Name: "Ghost"})
		require.Error(t, err)
		assert.Equal(t, models.ErrNotFound, models.AsAPIError(err).Code)
	})
}

func TestUserListAndDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	createTestUser(t, db, "Alice", "alice@test.local", models.RoleUser)
	createTestUser(t, db, "Bob", "bob@test.local", models.RoleUser)
	createTestUser(t, db, "Admin", "admin@test.local", models.RoleAdmin)

	t.Run("role filter", func(t *testing.T) {
		page, err := svc.List(UserListParams{Role: models.RoleAdmin, Sort: "id", Order: "ASC", Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("pagination math", func(t *testing.T) {
		page, err := svc.List(UserListParams{Sort: "id", Order: "ASC", Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.Pages)
		assert.Len(t, page.Users, 2)
	})

	t.Run("delete missing user is not found", func(t *testing.T) {
		err := svc.Delete(9999)
		require.Error(t, err)
		assert.Equal(t, models.ErrNotFound, models.AsAPIError(err).Code)
	})

	t.Run("delete existing user", func(t *testing.T) {
		page, err := svc.List(UserListParams{Email: "bob@test.local", Sort: "id", Order: "ASC", Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, page.Users, 1)

		require.NoError(t, svc.Delete(page.Users[0].ID))

		page, err = svc.List(UserListParams{Email: "bob@test.local", Sort: "id", Order: "ASC", Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)
	})
}
