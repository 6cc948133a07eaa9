package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"police_flow_app_go/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
	// MinPasswordLength is the shortest password accepted for new users
	MinPasswordLength = 8
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrEmailTaken         = errors.New("user with this email already exists")
)

var dummyHash, _ = HashPassword("dummy_password_for_timing_mitigation")

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword verifies a password against a hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// NewUserInput describes a user to provision with its roles
type NewUserInput struct {
	Name        string   `yaml:"name"`
	Email       string   `yaml:"email"`
	Password    string   `yaml:"password"`
	NationalID  string   `yaml:"national_id"`
	PhoneNumber string   `yaml:"phone_number"`
	Roles       []string `yaml:"roles"`
}

// CreateUserWithRoles creates a user and its role assignments in one transaction
func CreateUserWithRoles(db *gorm.DB, input NewUserInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if strings.TrimSpace(input.Name) == "" || input.Email == "" {
		return nil, validationError("name and email are required")
	}
	if len(input.Password) < MinPasswordLength {
		return nil, validationErrorf("password must be at least %d characters long", MinPasswordLength)
	}
	for _, role := range input.Roles {
		if !models.IsKnownRole(role) {
			return nil, validationErrorf("unknown role %q", role)
		}
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:        strings.TrimSpace(input.Name),
		Email:       input.Email,
		Password:    hashed,
		NationalID:  ptrIfNotEmpty(strings.TrimSpace(input.NationalID)),
		PhoneNumber: input.PhoneNumber,
		IsActive:    true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		for _, role := range input.Roles {
			assignment := &models.UserRole{UserID: user.ID, Role: role, IsActive: true}
			if err := tx.Create(assignment).Error; err != nil {
				return fmt.Errorf("failed to assign role %q: %w", role, err)
			}
			user.Roles = append(user.Roles, *assignment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and opens a session
func Login(db *gorm.DB, email, password, ipAddress, userAgent string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	err := db.Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// keep the response time of unknown emails close to a wrong password
			CheckPassword(password, dummyHash)
			trackFailedLogin(ipAddress, email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !CheckPassword(password, user.Password) {
		LogSecurityEvent("LOGIN_FAILED", user.ID, ipAddress)
		trackFailedLogin(ipAddress, email)
		return nil, ErrInvalidCredentials
	}

	session, err := CreateSession(db, user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	db.Model(&user).Update("last_login_at", now)
	return session, nil
}

// CreateSession creates a new session for a user
func CreateSession(db *gorm.DB, userID, ipAddress, userAgent string) (*models.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(DefaultSessionDuration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// ValidateSession validates a session token and returns the session if valid
func ValidateSession(db *gorm.DB, token string) (*models.Session, error) {
	var session models.Session

	err := db.Preload("User").Where("token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	if session.IsExpired(time.Now()) {
		db.Delete(&session)
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// DeleteSession deletes a session (logout)
func DeleteSession(db *gorm.DB, token string) error {
	result := db.Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	return nil
}

// CleanupExpiredSessions removes all expired sessions from the database
func CleanupExpiredSessions(db *gorm.DB) error {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		zap.S().Infow("Cleaned up expired sessions", "count", result.RowsAffected)
	}
	return nil
}

// LogSecurityEvent logs security-related events
func LogSecurityEvent(eventType, userID, details string) {
	zap.S().Warnw("security event", "type", eventType, "user_id", userID, "details", details)
}
