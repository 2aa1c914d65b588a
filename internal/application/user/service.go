package user

import (
	"context"
	"fmt"
	"time"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

// List bounds accepted by ListUsers.
const (
	MinListLimit = 1
	MaxListLimit = 100
)

// Service runs the user use cases. Users are never hard-deleted here.
type Service struct {
	repo ports.UserRepository
	tx   ports.Transactor
	now  func() time.Time
}

// NewService builds the user use cases. now defaults to time.Now.
func NewService(repo ports.UserRepository, tx ports.Transactor, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, tx: tx, now: now}
}

// CreateUser hashes the password and saves an active user with a normalized email.
func (s *Service) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	var created *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		email := domain.NormalizeEmail(input.Email)
		if err := s.checkEmail(ctx, email); err != nil {
			return err
		}
		hash, err := domain.HashPassword(input.Password)
		if err != nil {
			return err
		}
		u, err := domain.NewUser(domain.UserAttrs{
			Nom:            input.Nom,
			Prenom:         input.Prenom,
			Email:          email,
			MotDePasseHash: hash,
			Role:           input.Role,
			Actif:          true,
		}, s.now())
		if err != nil {
			return err
		}
		if err := s.repo.Save(ctx, u); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.load(ctx, id)
}

// ListUsers rejects a negative offset and a limit outside [MinListLimit, MaxListLimit].
func (s *Service) ListUsers(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	if offset < 0 {
		return nil, domerrors.Validation("offset", "must be >= 0")
	}
	if limit < MinListLimit || limit > MaxListLimit {
		return nil, domerrors.Validation("limit", fmt.Sprintf("must be between %d and %d", MinListLimit, MaxListLimit))
	}
	return s.repo.FindAll(ctx, offset, limit)
}

// UpdateUser applies the supplied names and email. A changed email is checked for uniqueness.
func (s *Service) UpdateUser(ctx context.Context, id int64, input ports.UpdateUserInput) (*domain.User, error) {
	return s.mutate(ctx, id, func(ctx context.Context, u *domain.User) error {
		attrs := u.Attrs()
		if input.Nom != nil {
			attrs.Nom = *input.Nom
		}
		if input.Prenom != nil {
			attrs.Prenom = *input.Prenom
		}
		if input.Email != nil {
			email := domain.NormalizeEmail(*input.Email)
			if email != u.Email {
				if err := s.checkEmail(ctx, email); err != nil {
					return err
				}
			}
			attrs.Email = email
		}
		next, err := domain.LoadUser(u.ID, attrs, u.DateCreation)
		if err != nil {
			return err
		}
		*u = *next
		return nil
	})
}

// DeleteUser deactivates the user.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, id, func(_ context.Context, u *domain.User) error {
		u.Deactivate()
		return nil
	})
	return err
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*domain.User, error) {
	return s.mutate(ctx, id, func(_ context.Context, u *domain.User) error {
		if active {
			u.Activate()
		} else {
			u.Deactivate()
		}
		return nil
	})
}

func (s *Service) ChangeRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	return s.mutate(ctx, id, func(_ context.Context, u *domain.User) error {
		return u.ChangeRole(role)
	})
}

// ChangePassword replaces the hash once oldPassword matches the stored one.
func (s *Service) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	_, err := s.mutate(ctx, id, func(_ context.Context, u *domain.User) error {
		if !u.VerifyPassword(oldPassword) {
			return domerrors.ErrIncorrectPassword
		}
		hash, err := domain.HashPassword(newPassword)
		if err != nil {
			return err
		}
		return u.SetPasswordHash(hash)
	})
	return err
}

// Authorize is false for inactive users. A missing user is NotFound.
func (s *Service) Authorize(ctx context.Context, id int64, action domain.Action) (bool, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	return u.Actif && u.HasPermission(action), nil
}

// mutate loads user id, applies fn and persists the result in one transaction.
func (s *Service) mutate(ctx context.Context, id int64, fn func(ctx context.Context, u *domain.User) error) (*domain.User, error) {
	var updated *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, u); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, u); err != nil {
			return fmt.Errorf("update user %d: %w", id, err)
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	if u == nil {
		return nil, domerrors.NotFound("user", id)
	}
	return u, nil
}

func (s *Service) checkEmail(ctx context.Context, email string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domerrors.AlreadyExists("user", "email", email)
	}
	return nil
}

var _ ports.UserUseCases = (*Service)(nil)
