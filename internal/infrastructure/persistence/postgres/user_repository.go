package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/persistence/db"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	id, err := queries(ctx, r.pool).CreateUtilisateur(ctx, db.CreateUtilisateurParams{
		Nom:            u.Nom,
		Prenom:         u.Prenom,
		Email:          u.Email,
		MotDePasseHash: u.MotDePasseHash,
		Role:           string(u.Role),
		Actif:          u.Actif,
		DateCreation:   u.DateCreation,
	})
	if err != nil {
		return mapUniqueViolation(err, map[string]string{"email": u.Email})
	}
	u.ID = id
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return toUser(queries(ctx, r.pool).GetUtilisateurByID(ctx, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return toUser(queries(ctx, r.pool).GetUtilisateurByEmail(ctx, email))
}

func (r *UserRepository) FindAll(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	off, lim := pageParams(offset, limit)
	rows, err := queries(ctx, r.pool).ListUtilisateurs(ctx, db.ListUtilisateursParams{
		Limit:  lim,
		Offset: off,
	})
	if err != nil {
		return nil, err
	}
	list := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		u, err := dbUtilisateurToDomain(row)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return queries(ctx, r.pool).UtilisateurExistsByEmail(ctx, email)
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	n, err := queries(ctx, r.pool).UpdateUtilisateur(ctx, db.UpdateUtilisateurParams{
		ID:             u.ID,
		Nom:            u.Nom,
		Prenom:         u.Prenom,
		Email:          u.Email,
		MotDePasseHash: u.MotDePasseHash,
		Role:           string(u.Role),
		Actif:          u.Actif,
	})
	if err != nil {
		return mapUniqueViolation(err, map[string]string{"email": u.Email})
	}
	if n == 0 {
		return domerrors.NotFound("user", u.ID)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return queries(ctx, r.pool).DeleteUtilisateur(ctx, id)
}

func toUser(row db.Utilisateur, err error) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return dbUtilisateurToDomain(row)
}

func dbUtilisateurToDomain(row db.Utilisateur) (*domain.User, error) {
	u, err := domain.LoadUser(row.ID, domain.UserAttrs{
		Nom:            row.Nom,
		Prenom:         row.Prenom,
		Email:          row.Email,
		MotDePasseHash: row.MotDePasseHash,
		Role:           domain.Role(row.Role),
		Actif:          row.Actif,
	}, row.DateCreation)
	if err != nil {
		return nil, fmt.Errorf("load utilisateur %d: %w", row.ID, err)
	}
	return u, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
