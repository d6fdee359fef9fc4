package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode"
)

const otpLength = 4

// GenerateOTP produce un código numérico de 4 dígitos con distribución
// uniforme sobre 0000-9999, a partir de entropía criptográfica.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpLength, n.Int64()), nil
}

func isValidOTPCode(code string) bool {
	if len(code) != otpLength {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
