package project

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhosseinghanipour/gestproj/internal/domain"
)

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Save(ctx context.Context, p *domain.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Project)
	return p, args.Error(1)
}

func (m *mockProjectRepo) FindAll(ctx context.Context, offset, limit int) ([]*domain.Project, error) {
	args := m.Called(ctx, offset, limit)
	ps, _ := args.Get(0).([]*domain.Project)
	return ps, args.Error(1)
}

func (m *mockProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProjectRepo) ExistsByName(ctx context.Context, nom string) (bool, error) {
	args := m.Called(ctx, nom)
	return args.Bool(0), args.Error(1)
}

func (m *mockProjectRepo) ExistsByNumero(ctx context.Context, numero string) (bool, error) {
	args := m.Called(ctx, numero)
	return args.Bool(0), args.Error(1)
}

func (m *mockProjectRepo) FindTemplates(ctx context.Context) ([]*domain.Project, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]*domain.Project)
	return ps, args.Error(1)
}

func (m *mockProjectRepo) FindByTemplateID(ctx context.Context, id int64) ([]*domain.Project, error) {
	args := m.Called(ctx, id)
	ps, _ := args.Get(0).([]*domain.Project)
	return ps, args.Error(1)
}

func (m *mockProjectRepo) FindByEntreprise(ctx context.Context, id int64) ([]*domain.Project, error) {
	args := m.Called(ctx, id)
	ps, _ := args.Get(0).([]*domain.Project)
	return ps, args.Error(1)
}

func (m *mockProjectRepo) FindByResponsable(ctx context.Context, id int64) ([]*domain.Project, error) {
	args := m.Called(ctx, id)
	ps, _ := args.Get(0).([]*domain.Project)
	return ps, args.Error(1)
}

// passthroughTx runs fn directly and counts calls.
type passthroughTx struct {
	calls int
}

func (tx *passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}
