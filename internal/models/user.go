package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID            string    `bun:"id,pk" json:"_id"`
	Prenom        string    `bun:"prenom,notnull" json:"prenom"`
	Nom           string    `bun:"nom,notnull" json:"nom"`
	Email         string    `bun:"email,unique,notnull" json:"email"`
	Password      string    `bun:"password,notnull" json:"-"`
	ResetToken    string    `bun:"reset_token,nullzero" json:"-"`
	ResetTokenExp time.Time `bun:"reset_token_exp,nullzero" json:"-"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// PublicUser is the shape returned by the auth endpoints. The password hash
// and reset fields never leave the service.
type PublicUser struct {
	ID     string `json:"_id"`
	Prenom string `json:"prenom"`
	Nom    string `json:"nom"`
	Email  string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Prenom: u.Prenom, Nom: u.Nom, Email: u.Email}
}
