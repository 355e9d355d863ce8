package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB generic jsonb column
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// Statuts fournisseur
const (
	FournisseurStatutActif   = "ACTIF"
	FournisseurStatutSuspendu = "SUSPENDU"
)

// Fournisseur supplier record. Score fields are persisted as received from the
// external evaluation service, never recomputed locally.
type Fournisseur struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	Code    string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Nom     string `json:"nom" gorm:"size:200;not null"`
	Email   string `json:"email" gorm:"size:200"`
	Telephone string `json:"telephone" gorm:"size:50"`
	Adresse string `json:"adresse" gorm:"size:500"`
	Statut  string `json:"statut" gorm:"size:20;default:ACTIF"`

	// Scores externes
	ScoreQualite   *float64 `json:"score_qualite" gorm:"type:decimal(5,2)"`
	ScoreLivraison *float64 `json:"score_livraison" gorm:"type:decimal(5,2)"`
	ScoreGlobal    *float64 `json:"score_global" gorm:"type:decimal(5,2)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (Fournisseur) TableName() string {
	return "fournisseurs"
}
