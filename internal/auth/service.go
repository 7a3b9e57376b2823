package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type Service struct {
	DB  *gorm.DB
	JWT *JWT
}

func NewService(db *gorm.DB, jwt *JWT) *Service {
	return &Service{DB: db, JWT: jwt}
}

// Register creates a user and returns it with a signed token.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := s.DB.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, "", ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Preferences:  datatypes.NewJSONType(Preferences{WeekStartDay: 0}),
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.JWT.Sign(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return &u, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var u User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if ComparePassword(u.PasswordHash, password) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.JWT.Sign(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return &u, token, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePreferences replaces the user's settings blob.
func (s *Service) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs Preferences) (*User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if prefs.WeekStartDay < 0 || prefs.WeekStartDay > 6 {
		return nil, fmt.Errorf("week start day out of range: %d", prefs.WeekStartDay)
	}
	u.Preferences = datatypes.NewJSONType(prefs)
	if err := s.DB.WithContext(ctx).Save(u).Error; err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return u, nil
}
