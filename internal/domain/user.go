package domain

import "time"

// User es el registro de identidad de una cuenta registrada.
type User struct {
	ID                 string     `json:"id" bson:"_id"`
	Username           string     `json:"username" bson:"username"`
	Email              string     `json:"email" bson:"email"`
	DisplayName        string     `json:"name" bson:"name"`
	PasswordHash       string     `json:"-" bson:"password_hash"`
	ResetCodeHash      string     `json:"-" bson:"reset_code_hash,omitempty"`
	ResetCodeExpiresAt *time.Time `json:"-" bson:"reset_code_expires_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" bson:"updated_at"`
}

// Public devuelve una copia sin credenciales ni datos de reset.
func (u User) Public() User {
	u.PasswordHash = ""
	u.ResetCodeHash = ""
	u.ResetCodeExpiresAt = nil
	return u
}

// HasPendingReset indica si el usuario tiene un codigo de reset vigente en t.
func (u User) HasPendingReset(t time.Time) bool {
	return u.ResetCodeHash != "" && u.ResetCodeExpiresAt != nil && t.Before(*u.ResetCodeExpiresAt)
}
