package db

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type Projet struct {
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
	DateCreation     time.Time
}

type Utilisateur struct {
	ID             int64
	Nom            string
	Prenom         string
	Email          string
	MotDePasseHash string
	Role           string
	Actif          bool
	DateCreation   time.Time
}
