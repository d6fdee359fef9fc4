package domain

import "time"

// User es una cuenta permanente, creada solo tras verificar el email.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TempUser es un registro de signup pendiente de verificación.
// Guarda el password y el OTP ya hasheados; nunca en texto plano.
type TempUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	OTPHash      string    `json:"-"`
	OTPExpiresAt time.Time `json:"otp_expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
