package service

import "golang.org/x/crypto/bcrypt"

// PasswordHasher aplica bcrypt sobre secretos (passwords y códigos OTP).
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher crea un hasher con el cost dado; fuera de rango usa 10.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 10
	}
	return &PasswordHasher{cost: cost}
}

// Hash genera el hash salteado del secreto. Solo falla por errores del
// primitivo de hashing, nunca por el contenido del secreto.
func (h *PasswordHasher) Hash(secret string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// Verify compara en tiempo constante; un hash malformado devuelve false.
func (h *PasswordHasher) Verify(secret, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret)) == nil
}
