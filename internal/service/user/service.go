package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/internal/service"
	"github.com/jwalitptl/patient-registry/internal/service/event"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
)

type UserServicer interface {
	ListUsers(ctx context.Context, filter *model.UserFilter) ([]*model.User, int, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	DeactivateUser(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo   repository.UserRepository
	events event.Emitter
}

func NewService(repo repository.UserRepository, events event.Emitter) *Service {
	return &Service{
		repo:   repo,
		events: events,
	}
}

func (s *Service) ListUsers(ctx context.Context, filter *model.UserFilter) ([]*model.User, int, error) {
	filter.Normalize()
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return users, total, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "user")
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return nil, apperrors.InvalidField("role", "role must be one of: ADMIN, DOCTOR, NURSE, STAFF")
	}
	active := req.IsActive == nil || *req.IsActive

	if isSelf(ctx, id) && (role != model.RoleAdmin || !active) {
		return nil, apperrors.Forbidden("administrators cannot demote or deactivate themselves")
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "user")
	}

	previousRole := user.Role
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Role = role
	user.IsActive = active

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, service.MapError(err, "user")
	}

	s.events.Emit(ctx, model.AggregateUser, model.ActionUpdated, user.ID, nil, map[string]interface{}{
		"previousRole": previousRole,
		"role":         user.Role,
		"isActive":     user.IsActive,
	})
	return user, nil
}

// DeactivateUser is the delete operation for accounts. Rows are kept so that
// createdById references stay resolvable.
func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	if isSelf(ctx, id) {
		return apperrors.Forbidden("administrators cannot demote or deactivate themselves")
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.MapError(err, "user")
	}
	if !user.IsActive {
		return nil
	}

	user.IsActive = false
	if err := s.repo.Update(ctx, user); err != nil {
		return service.MapError(err, "user")
	}

	s.events.Emit(ctx, model.AggregateUser, model.ActionDeleted, user.ID, nil, nil)
	return nil
}

func isSelf(ctx context.Context, id uuid.UUID) bool {
	actor := model.ActorID(ctx)
	return actor != nil && *actor == id
}
