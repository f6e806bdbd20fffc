package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/internal/service/event"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
	"github.com/jwalitptl/patient-registry/pkg/security"
)

const invalidCredentials = "invalid credentials"

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(userID uuid.UUID, email, role string) (string, time.Time, error)
	Verify(token string) (*security.Claims, error)
}

type AuthService interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error)
}

type Service struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	tokens   TokenIssuer
	events   event.Emitter
	now      func() time.Time
}

func NewService(userRepo repository.UserRepository, hasher security.PasswordHasher, tokens TokenIssuer, events event.Emitter) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		events:   events,
		now:      time.Now,
	}
}

// Login answers every failure with the same message so callers cannot probe
// which emails are registered.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, model.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(invalidCredentials)
		}
		return nil, apperrors.Internal(err)
	}

	if !user.IsActive {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	return s.issue(user)
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	role := model.RoleStaff
	if req.Role != "" {
		r, ok := model.ParseRole(req.Role)
		if !ok {
			return nil, apperrors.InvalidField("role", "role must be one of: ADMIN, DOCTOR, NURSE, STAFF")
		}
		role = r
	}
	if role == model.RoleAdmin {
		return nil, apperrors.InvalidField("role", "role ADMIN cannot be self-assigned")
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.FirstName, req.LastName, role)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// CreateAdmin provisions an administrator outside the public registration flow.
func (s *Service) CreateAdmin(ctx context.Context, email, password, firstName, lastName string) (*model.User, error) {
	return s.createUser(ctx, email, password, firstName, lastName, model.RoleAdmin)
}

func (s *Service) createUser(ctx context.Context, email, password, firstName, lastName string, role model.Role) (*model.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.InvalidField("password",
				fmt.Sprintf("password must be at least %d characters", security.MinPasswordLength))
		}
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, apperrors.InvalidField("password",
				fmt.Sprintf("password must be at most %d bytes", security.MaxPasswordBytes))
		}
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Email:        model.NormalizeEmail(email),
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email already registered", err)
		}
		return nil, apperrors.Internal(err)
	}

	s.events.Emit(ctx, model.AggregateUser, model.ActionCreated, user.ID, nil, map[string]string{
		"email": user.Email,
		"role":  user.Role.String(),
	})
	return user, nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// ValidateToken checks signature, algorithm, issuer and expiry. The user row
// is not consulted.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token subject")
	}
	role, ok := model.ParseRole(claims.Role)
	if !ok {
		return nil, apperrors.Unauthorized("invalid token role")
	}
	return &model.TokenClaims{UserID: userID, Email: claims.Email, Role: role}, nil
}

func (s *Service) issue(user *model.User) (*model.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Role.String())
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to sign token: %w", err))
	}
	return &model.AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
