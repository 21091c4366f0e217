package controllers

import (
	"net/http"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/dlopezm/gin-task-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ClientController manages API clients for the client-credentials flow.
// All routes are admin-only.
type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

// CreateClient godoc
// @Summary Create an API client
// @Description Register a machine integration; the plaintext secret is returned exactly once
// @Tags clients
// @Accept json
// @Produce json
// @Param client body object{name=string,domain=string,scopes=string} true "Client details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req struct {
		Name   string `json:"name" binding:"required"`
		Domain string `json:"domain"`
		Scopes string `json:"scopes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	client := &models.APIClient{
		ID:     uuid.New().String(),
		Secret: string(hashedSecret),
		Name:   req.Name,
		Domain: req.Domain,
		Scopes: req.Scopes,
		UserID: principal.ID,
	}
	if err := cc.clientService.CreateClient(client); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client_id":     client.ID,
		"client_secret": secret, // plaintext returned only once
		"name":          client.Name,
		"scopes":        client.Scopes,
	})
}

// ListClients godoc
// @Summary List API clients
// @Description List the clients owned by the calling admin
// @Tags clients
// @Accept json
// @Produce json
// @Success 200 {array} models.APIClient
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	clients, err := cc.clientService.GetClientsByUserID(principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// DeleteClient godoc
// @Summary Delete an API client
// @Description Delete a client owned by the calling admin
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	if err := cc.clientService.DeleteClient(c.Param("id"), principal.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}
