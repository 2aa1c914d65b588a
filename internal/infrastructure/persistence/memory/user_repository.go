package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

// UserRepository is an in-memory UserRepository. Emails are unique.
type UserRepository struct {
	mu   sync.RWMutex
	data map[int64]*domain.User
	seq  int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{data: make(map[int64]*domain.User)}
}

func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(u, 0); err != nil {
		return err
	}
	r.seq++
	u.ID = r.seq
	r.data[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.data {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindAll(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(r.data))
	start, end := pageBounds(len(ids), offset, limit)
	out := make([]*domain.User, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, cloneUser(r.data[id]))
	}
	return out, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, _ := r.FindByEmail(ctx, email)
	return u != nil, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.data[u.ID]
	if !ok {
		return domerrors.NotFound("user", u.ID)
	}
	if err := r.conflict(u, u.ID); err != nil {
		return err
	}
	next := cloneUser(u)
	next.DateCreation = old.DateCreation
	r.data[u.ID] = next
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

// conflict reports an email already used by a user other than self. Caller holds mu.
func (r *UserRepository) conflict(u *domain.User, self int64) error {
	for id, other := range r.data {
		if id != self && other.Email == u.Email {
			return domerrors.AlreadyExists("user", "email", u.Email)
		}
	}
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

var _ ports.UserRepository = (*UserRepository)(nil)
