package services

import (
	"errors"

	"github.com/dlopezm/gin-task-api/internal/models"
	"gorm.io/gorm"
)

// ClientService manages registered API clients for the
// client-credentials token flow.
type ClientService interface {
	CreateClient(client *models.APIClient) error
	GetClientsByUserID(userID uint) ([]models.APIClient, error)
	GetClientByID(id string) (*models.APIClient, error)
	DeleteClient(clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(client *models.APIClient) error {
	return s.db.Create(client).Error
}

func (s *clientService) GetClientsByUserID(userID uint) ([]models.APIClient, error) {
	var clients []models.APIClient
	if err := s.db.Where("user_id = ?", userID).Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(id string) (*models.APIClient, error) {
	var client models.APIClient
	if err := s.db.Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Client not found")
		}
		return nil, err
	}
	return &client, nil
}

func (s *clientService) DeleteClient(clientID string, userID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.APIClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Client not found")
	}
	return nil
}
