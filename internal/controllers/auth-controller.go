package controllers

import (
	"net/http"

	"github.com/dlopezm/gin-task-api/internal/auth"
	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/dlopezm/gin-task-api/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthController handles registration and password login.
type AuthController struct {
	userService services.UserService
	tokenIssuer *auth.TokenIssuer
}

func NewAuthController(userService services.UserService, tokenIssuer *auth.TokenIssuer) *AuthController {
	return &AuthController{
		userService: userService,
		tokenIssuer: tokenIssuer,
	}
}

// Register godoc
// @Summary Register a new account
// @Description Self-service registration; accounts always start with the user role
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body object{email=string,password=string,name=string} true "Registration payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/v1/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Name     string `json:"name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	// Registration never grants admin; promotion goes through an admin
	// updating the profile.
	user := &models.User{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     models.RoleUser,
	}

	if err := ac.userService.Create(user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	})
}

// Login godoc
// @Summary Log in with email and password
// @Description Returns a signed bearer token on success
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body object{email=string,password=string} true "Login payload"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	user, err := ac.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := ac.tokenIssuer.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
