package domain

import "time"

// PendingVerification guarda el OTP vigente de un email que aun no completo el registro.
// Hay a lo sumo uno por email: emitir otro codigo reemplaza al anterior.
type PendingVerification struct {
	Email     string    `json:"email" bson:"_id"`
	Code      string    `json:"-" bson:"code"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Expired reporta si el codigo vencio en t. El instante exacto de vencimiento sigue siendo valido.
func (p PendingVerification) Expired(t time.Time) bool {
	return t.After(p.ExpiresAt)
}
