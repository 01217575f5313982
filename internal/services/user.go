package services

import (
	"context"
	"fmt"
	"time"

	"ewaste-recycle-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const jwtExpDays = 365

// UserService handles principal registration and token issuance. The role
// claim baked into the token is what the workflow engine trusts.
type UserService struct {
	store     UserStore
	jwtSecret string
}

// NewUserService creates a new user service
func NewUserService(store UserStore, jwtSecret string) *UserService {
	return &UserService{
		store:     store,
		jwtSecret: jwtSecret,
	}
}

// GenerateJWT generates a signed token carrying the user id and role
func (s *UserService) GenerateJWT(userID string, role models.Role) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a token and returns the user ID and role
func (s *UserService) ValidateJWT(tokenString string) (string, models.Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", "", fmt.Errorf("user_id not found in token")
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return "", "", fmt.Errorf("role not found in token")
	}
	role := models.Role(roleStr)
	if role != models.RoleUser && role != models.RoleOrganization {
		return "", "", fmt.Errorf("unknown role %q", roleStr)
	}

	return userID, role, nil
}

// Register creates a new principal and returns it with a fresh token
func (s *UserService) Register(ctx context.Context, name, email string, role models.Role) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleOrganization {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("email already registered")
	}

	userID := uuid.New().String()

	token, err := s.GenerateJWT(userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user := &models.User{
		ID:        userID,
		Name:      name,
		Email:     email,
		Role:      role,
		Token:     token,
		CreatedAt: time.Now(),
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetByID(ctx, userID)
}

// UpdatePushToken stores or clears a user's device token
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return s.store.UpdatePushToken(ctx, userID, pushToken)
}
