package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const projetColumns = `id, numero, nom, description, type, stade, commentaire, date_debut, date_echeance,
	heures_planifiees, heures_reelles, est_template, projet_template_id, responsable_id, entreprise_id,
	contact_id, date_creation`

const createProjet = `INSERT INTO projets (numero, nom, description, type, stade, commentaire, date_debut,
	date_echeance, heures_planifiees, heures_reelles, est_template, projet_template_id, responsable_id,
	entreprise_id, contact_id, date_creation)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING id`

type CreateProjetParams struct {
	Numero           string
	Nom              string
	Description      string
	Type             string
	Stade            string
	Commentaire      string
	DateDebut        pgtype.Date
	DateEcheance     pgtype.Date
	HeuresPlanifiees float64
	HeuresReelles    float64
	EstTemplate      bool
	ProjetTemplateID pgtype.Int8
	ResponsableID    int64
	EntrepriseID     int64
	ContactID        pgtype.Int8
	DateCreation     time.Time
}

func (q *Queries) CreateProjet(ctx context.Context, arg CreateProjetParams) (int64, error) {
	row := q.db.QueryRow(ctx, createProjet,
		arg.Numero,
		arg.Nom,
		arg.Description,
		arg.Type,
		arg.Stade,
		arg.Commentaire,
		arg.DateDebut,
		arg.DateEcheance,
		arg.HeuresPlanifiees,
		arg.HeuresReelles,
		arg.EstTemplate,
		arg.ProjetTemplateID,
		arg.ResponsableID,
		arg.EntrepriseID,
		arg.ContactID,
		arg.DateCreation,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

// date_creation is never written after insert.
const updateProjet = `UPDATE projets SET numero = $2, nom = $3, description = $4, type = $5, stade = $6,
	commentaire = $7, date_debut = $8, date_echeance = $9, heures_planifiees = $10, heures_reelles = $11,
	est_template = $12, projet_template_id = $13, responsable_id = $14, entreprise_id = $15, contact_id = $16
WHERE id = $1`

type UpdateProjetParams struct {
	ID               int64
	Numero           string
	Nom              string
	Description      string
	Type             string
	Stade            string
	Commentaire      string
	DateDebut        pgtype.Date
	DateEcheance     pgtype.Date
	HeuresPlanifiees float64
	HeuresReelles    float64
	EstTemplate      bool
	ProjetTemplateID pgtype.Int8
	ResponsableID    int64
	EntrepriseID     int64
	ContactID        pgtype.Int8
}

func (q *Queries) UpdateProjet(ctx context.Context, arg UpdateProjetParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateProjet,
		arg.ID,
		arg.Numero,
		arg.Nom,
		arg.Description,
		arg.Type,
		arg.Stade,
		arg.Commentaire,
		arg.DateDebut,
		arg.DateEcheance,
		arg.HeuresPlanifiees,
		arg.HeuresReelles,
		arg.EstTemplate,
		arg.ProjetTemplateID,
		arg.ResponsableID,
		arg.EntrepriseID,
		arg.ContactID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const getProjetByID = `SELECT ` + projetColumns + ` FROM projets WHERE id = $1`

func (q *Queries) GetProjetByID(ctx context.Context, id int64) (Projet, error) {
	return scanProjet(q.db.QueryRow(ctx, getProjetByID, id))
}

const listProjets = `SELECT ` + projetColumns + ` FROM projets ORDER BY id LIMIT $1 OFFSET $2`

type ListProjetsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListProjets(ctx context.Context, arg ListProjetsParams) ([]Projet, error) {
	return q.listProjets(ctx, listProjets, arg.Limit, arg.Offset)
}

const listTemplates = `SELECT ` + projetColumns + ` FROM projets WHERE est_template ORDER BY id`

func (q *Queries) ListTemplates(ctx context.Context) ([]Projet, error) {
	return q.listProjets(ctx, listTemplates)
}

const listProjetsByTemplateID = `SELECT ` + projetColumns + ` FROM projets WHERE projet_template_id = $1 ORDER BY id`

func (q *Queries) ListProjetsByTemplateID(ctx context.Context, templateID int64) ([]Projet, error) {
	return q.listProjets(ctx, listProjetsByTemplateID, templateID)
}

const listProjetsByEntreprise = `SELECT ` + projetColumns + ` FROM projets WHERE entreprise_id = $1 ORDER BY id`

func (q *Queries) ListProjetsByEntreprise(ctx context.Context, entrepriseID int64) ([]Projet, error) {
	return q.listProjets(ctx, listProjetsByEntreprise, entrepriseID)
}

const listProjetsByResponsable = `SELECT ` + projetColumns + ` FROM projets WHERE responsable_id = $1 ORDER BY id`

func (q *Queries) ListProjetsByResponsable(ctx context.Context, responsableID int64) ([]Projet, error) {
	return q.listProjets(ctx, listProjetsByResponsable, responsableID)
}

const deleteProjet = `DELETE FROM projets WHERE id = $1`

func (q *Queries) DeleteProjet(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteProjet, id)
	return err
}

const projetExistsByNom = `SELECT EXISTS (SELECT 1 FROM projets WHERE nom = $1)`

func (q *Queries) ProjetExistsByNom(ctx context.Context, nom string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, projetExistsByNom, nom).Scan(&exists)
	return exists, err
}

const projetExistsByNumero = `SELECT EXISTS (SELECT 1 FROM projets WHERE numero = $1)`

func (q *Queries) ProjetExistsByNumero(ctx context.Context, numero string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, projetExistsByNumero, numero).Scan(&exists)
	return exists, err
}

func (q *Queries) listProjets(ctx context.Context, sql string, args ...interface{}) ([]Projet, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Projet{}
	for rows.Next() {
		i, err := scanProjet(rows)
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

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProjet(row scanner) (Projet, error) {
	var i Projet
	err := row.Scan(
		&i.ID,
		&i.Numero,
		&i.Nom,
		&i.Description,
		&i.Type,
		&i.Stade,
		&i.Commentaire,
		&i.DateDebut,
		&i.DateEcheance,
		&i.HeuresPlanifiees,
		&i.HeuresReelles,
		&i.EstTemplate,
		&i.ProjetTemplateID,
		&i.ResponsableID,
		&i.EntrepriseID,
		&i.ContactID,
		&i.DateCreation,
	)
	return i, err
}
