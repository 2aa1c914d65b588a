package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

const uniqueViolation = "23505"

// uniqueFields maps schema constraint names to the entity field they guard.
var uniqueFields = map[string][2]string{
	"projets_numero_key":     {"project", "numero"},
	"projets_nom_key":        {"project", "nom"},
	"utilisateurs_email_key": {"user", "email"},
}

// mapUniqueViolation turns a unique constraint failure into an AlreadyExistsError for value.
// values is keyed by field name. Other errors are returned unchanged.
func mapUniqueViolation(err error, values map[string]string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	target, ok := uniqueFields[pgErr.ConstraintName]
	if !ok {
		return domerrors.AlreadyExists("record", pgErr.ConstraintName, "")
	}
	return domerrors.AlreadyExists(target[0], target[1], values[target[1]])
}
