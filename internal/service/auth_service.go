package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/alumniconnect/backend/internal/domain"
	"github.com/alumniconnect/backend/internal/identity"
	"github.com/alumniconnect/backend/internal/repository"
)

var (
	ErrEmailTaken   = errors.New("email already taken")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrInvalidRole  = errors.New("role must be student, alumni or admin")
)

// AuthService seeds accounts and exchanges credentials for bearer tokens.
// Everything else about account management lives outside this core.
type AuthService struct {
	userRepo repository.UserRepository
	resolver *identity.Resolver
}

func NewAuthService(userRepo repository.UserRepository, resolver *identity.Resolver) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		resolver: resolver,
	}
}

type RegisterInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if role != domain.RoleStudent && role != domain.RoleAlumni && role != domain.RoleAdmin {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		FullName:     input.FullName,
		Role:         role,
		PasswordHash: hash,
		// Alumni accounts wait for admin approval; the approval workflow
		// itself belongs to the excluded profile subsystem.
		IsApproved: role != domain.RoleAlumni,
		CreatedAt:  time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.resolver.IssueToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &AuthResponse{User: user, AccessToken: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCreds
	}

	if !verifyPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCreds
	}

	token, err := s.resolver.IssueToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &AuthResponse{User: user, AccessToken: token}, nil
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)

	return fmt.Sprintf("%s:%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func verifyPassword(password, encoded string) bool {
	saltB64, hashB64, ok := strings.Cut(encoded, ":")
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(hashB64)
	if err != nil {
		return false
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare(hash, expectedHash) == 1
}
