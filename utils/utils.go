package utils

import (
	"math/rand/v2"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// GenerateVirtualAccountNumber returns a random 16 to 18 digit number whose
// first digit is never zero.
func GenerateVirtualAccountNumber() string {
	length := 16 + rand.IntN(3)

	var b strings.Builder
	b.Grow(length)
	b.WriteByte(byte('1' + rand.IntN(9)))
	for i := 1; i < length; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
