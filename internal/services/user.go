package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"sparkmatch-backend/internal/apperrors"
	"sparkmatch-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UserService handles signup, signin, tokens and profile mutation
type UserService struct {
	users    UserStore
	tokenKey string
	tokenExp time.Duration
	hashCost int
}

// NewUserService creates a new user service
func NewUserService(users UserStore, tokenKey string, tokenExpSec, hashCost int) *UserService {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &UserService{
		users:    users,
		tokenKey: tokenKey,
		tokenExp: time.Duration(tokenExpSec) * time.Second,
		hashCost: hashCost,
	}
}

// SignupRequest represents a request to create a user
type SignupRequest struct {
	Email       string           `json:"email"`
	Name        string           `json:"name"`
	Password    string           `json:"password"`
	Gender      string           `json:"gender"`
	Birth       time.Time        `json:"birth"`
	Description string           `json:"description"`
	Location    *models.Location `json:"location"`
}

// UpdateUserRequest represents a partial profile update
type UpdateUserRequest struct {
	Email       *string          `json:"email"`
	Name        *string          `json:"name"`
	Password    *string          `json:"password"`
	Gender      *string          `json:"gender"`
	Birth       *time.Time       `json:"birth"`
	Description *string          `json:"description"`
	Banned      *bool            `json:"banned"`
	Location    *models.Location `json:"location"`
	PushToken   *string          `json:"push_token"`
}

// Signup validates the request, hashes the password and creates the user
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*models.User, string, error) {
	if err := validateSignup(req); err != nil {
		return nil, "", err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", apperrors.New(apperrors.Conflict, "email already registered")
	} else if !apperrors.Is(err, apperrors.NotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Gender:       req.Gender,
		Birth:        req.Birth,
		Description:  req.Description,
		Location:     *req.Location,
		Likes:        []string{},
		Nopes:        []string{},
		Reveals:      []string{},
		Pictures:     []models.Picture{},
		Reports:      []models.Report{},
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Signin checks credentials and issues a token
func (s *UserService) Signin(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.New(apperrors.Unauthorized, "invalid password")
	}
	return s.GenerateJWT(user.ID)
}

// GenerateJWT generates a signed token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.tokenExp).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	tokenString, err := token.SignedString([]byte(s.tokenKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a token and returns the user ID it carries
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.tokenKey), nil
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.Unauthorized, "failed to parse token", err)
	}
	if !token.Valid {
		return "", apperrors.New(apperrors.Unauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.New(apperrors.Unauthorized, "invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", apperrors.New(apperrors.Unauthorized, "user_id not found in token")
	}
	return userID, nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetAll retrieves every user
func (s *UserService) GetAll(ctx context.Context) ([]*models.User, error) {
	return s.users.GetAll(ctx)
}

// Update applies a partial profile update
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		if !emailPattern.MatchString(*req.Email) {
			return nil, apperrors.New(apperrors.Validation, "invalid user email")
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		if len(*req.Name) < 3 || len(*req.Name) > 30 {
			return nil, apperrors.New(apperrors.Validation, "name length must be between 3 and 30 characters")
		}
		user.Name = *req.Name
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return nil, apperrors.New(apperrors.Validation, "password length must be greater than 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if req.Gender != nil {
		if *req.Gender != "male" && *req.Gender != "female" {
			return nil, apperrors.New(apperrors.Validation, "invalid gender")
		}
		user.Gender = *req.Gender
	}
	if req.Birth != nil {
		if tooYoung(*req.Birth) {
			return nil, apperrors.New(apperrors.Validation, "age must be greater than 18")
		}
		user.Birth = *req.Birth
	}
	if req.Description != nil {
		user.Description = *req.Description
	}
	if req.Banned != nil {
		user.Banned = *req.Banned
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.PushToken != nil {
		user.PushToken = req.PushToken
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func validateSignup(req SignupRequest) error {
	if !emailPattern.MatchString(req.Email) {
		return apperrors.New(apperrors.Validation, "invalid user email")
	}
	if len(req.Name) < 3 || len(req.Name) > 30 {
		return apperrors.New(apperrors.Validation, "name length must be between 3 and 30 characters")
	}
	if len(req.Password) < 8 {
		return apperrors.New(apperrors.Validation, "password length must be greater than 8 characters")
	}
	if req.Gender != "male" && req.Gender != "female" {
		return apperrors.New(apperrors.Validation, "invalid gender")
	}
	if req.Birth.IsZero() {
		return apperrors.New(apperrors.Validation, "birth date is required")
	}
	if tooYoung(req.Birth) {
		return apperrors.New(apperrors.Validation, "age must be greater than 18")
	}
	if req.Description == "" {
		return apperrors.New(apperrors.Validation, "description is required")
	}
	if req.Location == nil {
		return apperrors.New(apperrors.Validation, "location is required")
	}
	return nil
}

func tooYoung(birth time.Time) bool {
	return birth.After(time.Now().AddDate(-18, 0, 0))
}
