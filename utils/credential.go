package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GenerateCredential formats a certificate credential, e.g. CRS0001-U0042.
func GenerateCredential(prefix string, programID, userID uint) string {
	return fmt.Sprintf("%s%04d-U%04d", prefix, programID, userID)
}

// ProgressPercentage returns completed/total as a percentage rounded to two
// decimals and capped at 100.
func ProgressPercentage(completed, total int64) decimal.Decimal {
	if total <= 0 || completed <= 0 {
		return decimal.Zero
	}
	p := decimal.NewFromInt(completed).Mul(hundred).DivRound(decimal.NewFromInt(total), 2)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
