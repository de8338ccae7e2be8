// Package taxonomy manages the set of reading statuses users can assign.
//
// Seeded statuses are protected: they can be renamed but never deleted or
// re-roled, so every collection keeps a planned, in-progress and completed state.
package taxonomy

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/validation"
)

type StatusStore interface {
	List(ctx context.Context) ([]entities.StatusCode, error)
	GetByID(ctx context.Context, id uint) (*entities.StatusCode, error)
	GetByName(ctx context.Context, name string) (*entities.StatusCode, error)
	FirstByRole(ctx context.Context, role entities.StatusRole) (*entities.StatusCode, error)
	Exists(ctx context.Context, id uint) (bool, error)
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, status *entities.StatusCode) error
	Update(ctx context.Context, status *entities.StatusCode) error
	Delete(ctx context.Context, id uint) error
}

// UsageCounter reports how many log records reference a status.
type UsageCounter interface {
	CountByStatus(ctx context.Context, statusID uint) (int64, error)
}

type Service struct {
	store     StatusStore
	usage     UsageCounter
	validator *validation.Validator
}

func NewService(store StatusStore, usage UsageCounter) *Service {
	return &Service{store: store, usage: usage, validator: validation.New()}
}

type StatusInput struct {
	Name string              `json:"name" validate:"required,max=64"`
	Role entities.StatusRole `json:"role" validate:"omitempty,oneof=planned in_progress completed custom"`
}

func (s *Service) List(ctx context.Context) ([]entities.StatusCode, error) {
	statuses, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list statuses", err)
	}
	return statuses, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*entities.StatusCode, error) {
	status, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "status %d not found", id)
	}
	return status, nil
}

func (s *Service) GetByName(ctx context.Context, name string) (*entities.StatusCode, error) {
	status, err := s.store.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, notFoundOr(err, "status %q not found", name)
	}
	return status, nil
}

func (s *Service) Exists(ctx context.Context, id uint) (bool, error) {
	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return false, apperr.Internal("failed to check status", err)
	}
	return exists, nil
}

// DefaultPlanned returns the status new books start in.
func (s *Service) DefaultPlanned(ctx context.Context) (*entities.StatusCode, error) {
	status, err := s.store.FirstByRole(ctx, entities.StatusRolePlanned)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("no planned status configured", err)
		}
		return nil, apperr.Internal("failed to load planned status", err)
	}
	return status, nil
}

// Create adds a status; the role defaults to custom.
func (s *Service) Create(ctx context.Context, in StatusInput) (*entities.StatusCode, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = entities.StatusRoleCustom
	}

	status := &entities.StatusCode{Name: in.Name, Role: role}
	if err := s.store.Create(ctx, status); err != nil {
		return nil, apperr.Internal("failed to create status", err)
	}
	return status, nil
}

// Update renames a status and optionally changes its role. Protected
// statuses keep their role.
func (s *Service) Update(ctx context.Context, id uint, in StatusInput) (*entities.StatusCode, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	status, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, id); err != nil {
		return nil, err
	}
	if in.Role != "" && in.Role != status.Role {
		if status.Protected {
			return nil, apperr.Conflictf("role of protected status %q cannot change", status.Name).WithField("role", "is fixed for protected statuses")
		}
		status.Role = in.Role
	}
	status.Name = in.Name

	if err := s.store.Update(ctx, status); err != nil {
		return nil, apperr.Internal("failed to update status", err)
	}
	return status, nil
}

// Delete refuses protected statuses and statuses referenced by any record.
func (s *Service) Delete(ctx context.Context, id uint) error {
	status, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if status.Protected {
		return apperr.Conflictf("status %q is a default status and cannot be deleted", status.Name)
	}

	used, err := s.usage.CountByStatus(ctx, id)
	if err != nil {
		return apperr.Internal("failed to count status usage", err)
	}
	if used > 0 {
		return apperr.Conflictf("status %q is used in %d status records", status.Name, used)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return apperr.Internal("failed to delete status", err)
	}
	return nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.store.NameTaken(ctx, name, excludeID)
	if err != nil {
		return apperr.Internal("failed to check status name", err)
	}
	if taken {
		return apperr.Conflictf("status %q already exists", name).WithField("name", "already exists")
	}
	return nil
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf(format, args...)
	}
	return apperr.Internal("failed to load status", err)
}
