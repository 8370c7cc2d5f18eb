package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	userRepo repository.UserRepository
	carts    CartService
	tokens   *auth.TokenManager
	logger   zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	carts CartService,
	tokens *auth.TokenManager,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		carts:    carts,
		tokens:   tokens,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, model.RoleCustomer)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("account registered")
	return s.respond(user)
}

// Login verifies the credentials and merges the named guest cart. A failed
// merge does not fail the login.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		s.logger.Debug().Msg("login for unknown email")
		return nil, model.ErrInvalidCredentials
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		s.logger.Warn().Str("user_id", user.ID.String()).Msg("login with wrong password")
		return nil, model.ErrInvalidCredentials
	}

	if req.GuestCartID != "" {
		if _, err := s.carts.MergeGuestCart(ctx, user.ID, req.GuestCartID); err != nil {
			s.logger.Warn().Err(err).
				Str("user_id", user.ID.String()).
				Str("guest_id", req.GuestCartID).
				Msg("failed to merge guest cart")
		}
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("login succeeded")
	return s.respond(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthenticated
	}
	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		s.logger.Debug().Str("email", existing.Email).Msg("admin account already present")
		return nil
	}

	user, err := s.createUser(ctx, "Administrator", email, password, model.RoleAdmin)
	if errors.Is(err, model.ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("admin account created")
	return nil
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	if len(password) < 8 {
		return nil, model.ErrValidationFailed.WithMessage("Password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &model.AuthResponse{Token: token, User: *user}, nil
}
