package db

import (
	"context"
	"time"
)

const utilisateurColumns = `id, nom, prenom, email, mot_de_passe_hash, role, actif, date_creation`

const createUtilisateur = `INSERT INTO utilisateurs (nom, prenom, email, mot_de_passe_hash, role, actif, date_creation)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

type CreateUtilisateurParams struct {
	Nom            string
	Prenom         string
	Email          string
	MotDePasseHash string
	Role           string
	Actif          bool
	DateCreation   time.Time
}

func (q *Queries) CreateUtilisateur(ctx context.Context, arg CreateUtilisateurParams) (int64, error) {
	row := q.db.QueryRow(ctx, createUtilisateur,
		arg.Nom,
		arg.Prenom,
		arg.Email,
		arg.MotDePasseHash,
		arg.Role,
		arg.Actif,
		arg.DateCreation,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateUtilisateur = `UPDATE utilisateurs SET nom = $2, prenom = $3, email = $4, mot_de_passe_hash = $5,
	role = $6, actif = $7
WHERE id = $1`

type UpdateUtilisateurParams struct {
	ID             int64
	Nom            string
	Prenom         string
	Email          string
	MotDePasseHash string
	Role           string
	Actif          bool
}

func (q *Queries) UpdateUtilisateur(ctx context.Context, arg UpdateUtilisateurParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateUtilisateur,
		arg.ID,
		arg.Nom,
		arg.Prenom,
		arg.Email,
		arg.MotDePasseHash,
		arg.Role,
		arg.Actif,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const getUtilisateurByID = `SELECT ` + utilisateurColumns + ` FROM utilisateurs WHERE id = $1`

func (q *Queries) GetUtilisateurByID(ctx context.Context, id int64) (Utilisateur, error) {
	return scanUtilisateur(q.db.QueryRow(ctx, getUtilisateurByID, id))
}

const getUtilisateurByEmail = `SELECT ` + utilisateurColumns + ` FROM utilisateurs WHERE email = $1`

func (q *Queries) GetUtilisateurByEmail(ctx context.Context, email string) (Utilisateur, error) {
	return scanUtilisateur(q.db.QueryRow(ctx, getUtilisateurByEmail, email))
}

const listUtilisateurs = `SELECT ` + utilisateurColumns + ` FROM utilisateurs ORDER BY id LIMIT $1 OFFSET $2`

type ListUtilisateursParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListUtilisateurs(ctx context.Context, arg ListUtilisateursParams) ([]Utilisateur, error) {
	rows, err := q.db.Query(ctx, listUtilisateurs, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Utilisateur{}
	for rows.Next() {
		i, err := scanUtilisateur(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const utilisateurExistsByEmail = `SELECT EXISTS (SELECT 1 FROM utilisateurs WHERE email = $1)`

func (q *Queries) UtilisateurExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, utilisateurExistsByEmail, email).Scan(&exists)
	return exists, err
}

const deleteUtilisateur = `DELETE FROM utilisateurs WHERE id = $1`

func (q *Queries) DeleteUtilisateur(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteUtilisateur, id)
	return err
}

func scanUtilisateur(row scanner) (Utilisateur, error) {
	var i Utilisateur
	err := row.Scan(
		&i.ID,
		&i.Nom,
		&i.Prenom,
		&i.Email,
		&i.MotDePasseHash,
		&i.Role,
		&i.Actif,
		&i.DateCreation,
	)
	return i, err
}
