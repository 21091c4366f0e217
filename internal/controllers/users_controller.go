package controllers

import (
	"net/http"
	"strconv"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/dlopezm/gin-task-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UsersController handles user administration and profile access.
type UsersController struct {
	userService services.UserService
}

func NewUsersController(userService services.UserService) *UsersController {
	return &UsersController{userService: userService}
}

// ListUsers godoc
// @Summary List users
// @Description Filtered, sorted, paginated user listing. Admin only. Password hashes are never serialized.
// @Tags users
// @Accept json
// @Produce json
// @Param role query string false "Filter by role"
// @Param email query string false "Filter by exact email"
// @Param sort query string false "Sort field: id, name, email, role" default(id)
// @Param order query string false "ASC or DESC" default(ASC)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} services.UserPage
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users [get]
func (uc *UsersController) ListUsers(c *gin.Context) {
	params, err := services.ParseUserListParams(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := uc.userService.List(params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateUser godoc
// @Summary Create a user
// @Description Admin-only user creation; the password is stored hashed
// @Tags users
// @Accept json
// @Produce json
// @Param user body object{name=string,email=string,password=string,role=string} true "User payload"
// @Success 201 {object} models.User
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users [post]
func (uc *UsersController) CreateUser(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
	if err := uc.userService.Create(user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser godoc
// @Summary Get a user
// @Description Admins may fetch any profile, other callers only their own
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/{id} [get]
func (uc *UsersController) GetUser(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := userID(c)
	if !ok {
		return
	}

	user, err := uc.userService.GetByID(principal, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update a user
// @Description Admins may update any profile, other callers only their own. The role field only takes effect for admin callers and is silently ignored otherwise.
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body object{name=string,email=string,password=string,role=string} true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/{id} [put]
func (uc *UsersController) UpdateUser(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := userID(c)
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"omitempty,email"`
		Password string `json:"password" binding:"omitempty,min=6"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	user, err := uc.userService.Update(principal, id, services.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Admin-only deletion
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/{id} [delete]
func (uc *UsersController) DeleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	if err := uc.userService.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// userID parses the id path parameter.
func userID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, models.NewValidationError("Invalid user ID format"))
		return 0, false
	}
	return uint(id), true
}
