// Package service holds helpers shared by the domain services.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/repository"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
)

// PatientChecker reports whether an active patient exists.
type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// MapError converts repository failures into application errors for resource.
// AppErrors pass through untouched.
func MapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(resource)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict(fmt.Sprintf("%s already exists", resource), err)
	default:
		return apperrors.Internal(err)
	}
}

// EnsurePatient fails with NotFound unless the referenced patient is active.
func EnsurePatient(ctx context.Context, patients PatientChecker, id uuid.UUID) error {
	exists, err := patients.Exists(ctx, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !exists {
		return apperrors.NotFound("patient")
	}
	return nil
}
