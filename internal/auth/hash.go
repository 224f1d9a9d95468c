package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// custo 12: login de staff é raro o bastante para pagar o hash mais caro
const bcryptCost = 12

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword devolve false para qualquer erro de comparação.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
