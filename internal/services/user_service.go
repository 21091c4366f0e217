package services

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/dlopezm/gin-task-api/internal/models"
	"gorm.io/gorm"
)

// userSortColumns is the closed set of sort keys accepted by user listing.
var userSortColumns = map[string]string{
	"id":    "id",
	"name":  "name",
	"email": "email",
	"role":  "role",
}

// UserListParams is the parsed filter intent of an admin user listing.
type UserListParams struct {
	Role  string
	Email string
	Sort  string
	Order string
	Page  int
	Limit int
}

// ParseUserListParams validates raw query values into UserListParams.
// Defaults: sort=id, order=ASC, page=1, limit=10.
func ParseUserListParams(query url.Values) (UserListParams, error) {
	params := UserListParams{
		Role:  query.Get("role"),
		Email: query.Get("email"),
		Sort:  "id",
		Order: "ASC",
		Page:  1,
		Limit: 10,
	}

	if params.Role != "" && !models.ValidRole(params.Role) {
		return params, models.NewValidationError(fmt.Sprintf("Invalid role filter: %s", params.Role))
	}
	if raw := query.Get("sort"); raw != "" {
		if _, ok := userSortColumns[raw]; !ok {
			return params, models.NewValidationError(fmt.Sprintf("Invalid sort field: %s", raw))
		}
		params.Sort = raw
	}

	order, err := parseOrder(query.Get("order"))
	if err != nil {
		return params, err
	}
	params.Order = order

	params.Page, params.Limit, err = parsePagination(query)
	if err != nil {
		return params, err
	}
	return params, nil
}

// AuthorizeProfileAccess reports whether the principal may read or update
// the target profile: admins always, everybody else only their own.
func AuthorizeProfileAccess(principal models.Principal, targetID uint) bool {
	return principal.IsAdmin() || principal.ID == targetID
}

// UserPage is one page of the user listing.
type UserPage struct {
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Users []models.User `json:"users"`
}

// UserUpdate carries the profile fields an update may change. Empty strings
// mean "leave unchanged", matching form semantics.
type UserUpdate struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UserService manages user accounts
type UserService interface {
	// Create persists a new user with a hashed password
	Create(user *models.User) error
	// Authenticate verifies credentials and returns the matching user
	Authenticate(email, password string) (*models.User, error)
	// List retrieves a filtered, sorted, paginated page of users (admin only,
	// enforced at the route)
	List(params UserListParams) (*UserPage, error)
	// GetByID retrieves a user after the profile access check
	GetByID(principal models.Principal, id uint) (*models.User, error)
	// GetByEmail retrieves a user by email
	GetByEmail(email string) (*models.User, error)
	// Update applies a profile mutation after the profile access check
	Update(principal models.Principal, id uint, update UserUpdate) (*models.User, error)
	// Delete removes a user (admin only, enforced at the route)
	Delete(id uint) error
}

type userService struct {
	db *gorm.DB
}

// NewUserService creates a new instance of UserService
func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) Create(user *models.User) error {
	if user.Email == "" || user.Password == "" {
		return models.NewValidationError("email and password required")
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if !models.ValidRole(user.Role) {
		return models.NewValidationError(fmt.Sprintf("Invalid role: %s", user.Role))
	}

	// Best-effort pre-check; the unique index on email stays authoritative.
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return models.NewConflictError("Email already in use")
	}

	if err := user.HashPassword(); err != nil {
		return err
	}
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Email already in use")
		}
		return err
	}
	return nil
}

func (s *userService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, models.NewUnauthenticatedError("Invalid password")
	}
	return user, nil
}

func (s *userService) List(params UserListParams) (*UserPage, error) {
	q := s.db.Model(&models.User{})
	if params.Role != "" {
		q = q.Where("role = ?", params.Role)
	}
	if params.Email != "" {
		q = q.Where("email = ?", params.Email)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var users []models.User
	err := q.Order(fmt.Sprintf("%s %s", userSortColumns[params.Sort], params.Order)).
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return &UserPage{
		Total: total,
		Page:  params.Page,
		Pages: pageCount(total, params.Limit),
		Users: users,
	}, nil
}

func (s *userService) GetByID(principal models.Principal, id uint) (*models.User, error) {
	if !AuthorizeProfileAccess(principal, id) {
		return nil, models.NewForbiddenError("Not authorized")
	}
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) Update(principal models.Principal, id uint, update UserUpdate) (*models.User, error) {
	if !AuthorizeProfileAccess(principal, id) {
		return nil, models.NewForbiddenError("Not authorized")
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User not found")
		}
		return nil, err
	}

	if update.Email != "" && update.Email != user.Email {
		// Uniqueness re-check excluding the target's own row.
		var count int64
		if err := s.db.Model(&models.User{}).
			Where("email = ? AND id <> ?", update.Email, user.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, models.NewConflictError("Email already in use")
		}
		user.Email = update.Email
	}
	if update.Name != "" {
		user.Name = update.Name
	}
	// Role changes are admin-only; for everybody else the field is silently
	// ignored rather than rejected.
	if update.Role != "" && principal.IsAdmin() {
		if !models.ValidRole(update.Role) {
			return nil, models.NewValidationError(fmt.Sprintf("Invalid role: %s", update.Role))
		}
		user.Role = update.Role
	}
	if update.Password != "" {
		user.Password = update.Password
		if err := user.HashPassword(); err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("Email already in use")
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) Delete(id uint) error {
	result := s.db.Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User not found")
	}
	return nil
}
