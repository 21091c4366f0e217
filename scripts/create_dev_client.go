package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Local copies of the persisted shapes so the script stays standalone.

type APIClient struct {
	ID        string `gorm:"primaryKey"`
	Secret    string `gorm:"not null"`
	Name      string `gorm:"not null"`
	Domain    string
	UserID    uint
	Scopes    string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (APIClient) TableName() string {
	return "api_clients"
}

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Role      string `gorm:"default:'user'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func main() {
	// Parse command line flags
	role := flag.String("role", "admin", "User role (admin or user)")
	dbPath := flag.String("db", "tasks.sqlite", "Path to the sqlite database")
	flag.Parse()

	db, err := gorm.Open(sqlite.Open(*dbPath), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Determine client credentials based on role
	var clientID, clientSecret string
	if *role == "user" {
		clientID = "user-client"
		clientSecret = "user-secret-123"
	} else {
		clientID = "dev-client"
		clientSecret = "dev-secret-123"
	}

	// Check if client already exists
	var existing APIClient
	if err := db.Where("id = ?", clientID).First(&existing).Error; err == nil {
		fmt.Printf("Development client already exists for role '%s'!\n", *role)
		fmt.Printf("Client ID: %s\n", clientID)
		fmt.Printf("Client Secret: %s\n", clientSecret)
		return
	}

	// Get or create user with specified role
	userID := getUserIDForRole(db, *role)
	if userID == 0 {
		log.Fatal("Failed to get user ID for role:", *role)
	}

	// Create new client
	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash secret:", err)
	}

	client := APIClient{
		ID:        clientID,
		Secret:    string(hash),
		Name:      fmt.Sprintf("Development %s Client", *role),
		Domain:    "http://localhost",
		UserID:    userID,
		Scopes:    "read write",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := db.Create(&client).Error; err != nil {
		log.Fatal("Failed to create client:", err)
	}

	fmt.Printf("Development API client created for role '%s'\n", *role)
	fmt.Printf("Client ID: %s\n", clientID)
	fmt.Printf("Client Secret: %s\n", clientSecret)
	fmt.Printf("User ID: %d\n", userID)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:8080/api/v1/auth/token \\\n")
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", clientID)
	fmt.Printf("  -d 'client_secret=%s'\n", clientSecret)
}

// getUserIDForRole gets or creates a user with the specified role
func getUserIDForRole(db *gorm.DB, role string) uint {
	var user User
	email := fmt.Sprintf("%s@tasks.local", role)

	// Try to find existing user
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
		return user.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(fmt.Sprintf("%s-secret-123", role)), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return 0
	}

	// Create new user
	user = User{
		Name:      fmt.Sprintf("%s User", role),
		Email:     email,
		Password:  string(hash),
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := db.Create(&user).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		return 0
	}

	fmt.Printf("Created new user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
	return user.ID
}
