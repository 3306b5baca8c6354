package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/auth/repository"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 6

// AuthService verifies and creates credentials. It holds no per-session state; see Client.
type AuthService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*entity.Identity, error)
	SignIn(ctx context.Context, email, password string) (*entity.Identity, error)
	SignInFederated(ctx context.Context, code string) (*entity.Identity, error)
	FederatedURL(state string) (string, error)
	Lookup(ctx context.Context, uid string) (*entity.Identity, error)
}

type authService struct {
	repo   repository.CredentialRepository
	google GoogleExchanger
}

// NewAuthService creates the credential service. google may be nil, in which case federated sign-in
// reports auth/operation-not-allowed.
func NewAuthService(repo repository.CredentialRepository, google GoogleExchanger) AuthService {
	return &authService{repo: repo, google: google}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) SignUp(ctx context.Context, email, password, displayName string) (*entity.Identity, error) {
	email = normalizeEmail(email)
	if !validator.IsEmail(email) {
		return nil, newError(CodeInvalidEmail, "The email address is badly formatted.", nil)
	}
	if len(password) < MinPasswordLength {
		return nil, newError(CodeWeakPassword, "Password should be at least 6 characters.", nil)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, newError(CodeEmailAlreadyInUse, "The email address is already in use by another account.", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &entity.Credential{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(displayName),
	}
	if cred.DisplayName != "" {
		photo := entity.AvatarURL(cred.DisplayName)
		cred.PhotoURL = &photo
	}

	if err := s.repo.Create(ctx, cred); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(CodeEmailAlreadyInUse, "The email address is already in use by another account.", err)
		}
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	return cred.Identity(), nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	email = normalizeEmail(email)
	if !validator.IsEmail(email) {
		return nil, newError(CodeInvalidEmail, "The email address is badly formatted.", nil)
	}

	cred, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(CodeUserNotFound, "There is no user record corresponding to this identifier.", err)
		}
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, newError(CodeWrongPassword, "The password is invalid.", err)
	}

	return cred.Identity(), nil
}

func (s *authService) FederatedURL(state string) (string, error) {
	if s.google == nil {
		return "", newError(CodeFederatedNotConfig, "Google sign-in is not configured.", nil)
	}
	return s.google.AuthCodeURL(state), nil
}

func (s *authService) SignInFederated(ctx context.Context, code string) (*entity.Identity, error) {
	if s.google == nil {
		return nil, newError(CodeFederatedNotConfig, "Google sign-in is not configured.", nil)
	}
	if strings.TrimSpace(code) == "" {
		return nil, newError(CodeFederatedFailed, "Missing authorization code.", nil)
	}

	googleUser, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, newError(CodeFederatedFailed, "Google sign-in failed.", err)
	}

	cred, err := s.repo.FindByGoogleID(ctx, googleUser.ID)
	if err == nil {
		return cred.Identity(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up google credential: %w", err)
	}

	email := normalizeEmail(googleUser.Email)
	cred, err = s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing password account; link it.
		cred.GoogleID = &googleUser.ID
		if cred.PhotoURL == nil && googleUser.Picture != "" {
			cred.PhotoURL = &googleUser.Picture
		}
		if err := s.repo.Update(ctx, cred); err != nil {
			log.Printf("⚠️ Failed to link Google account for %s: %v", email, err)
		}
		return cred.Identity(), nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		randomPassword := uuid.New().String()
		hash, err := bcrypt.GenerateFromPassword([]byte(randomPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}

		cred = &entity.Credential{
			Email:        email,
			PasswordHash: string(hash),
			DisplayName:  googleUser.Name,
			GoogleID:     &googleUser.ID,
		}
		if googleUser.Picture != "" {
			cred.PhotoURL = &googleUser.Picture
		}
		if err := s.repo.Create(ctx, cred); err != nil {
			return nil, fmt.Errorf("failed to create credential: %w", err)
		}
		return cred.Identity(), nil

	default:
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}
}

func (s *authService) Lookup(ctx context.Context, uid string) (*entity.Identity, error) {
	cred, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(CodeUserNotFound, "There is no user record corresponding to this identifier.", err)
		}
		return nil, err
	}
	return cred.Identity(), nil
}
