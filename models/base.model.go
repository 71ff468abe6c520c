package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Model mirrors gorm.Model with camelCase JSON names.
type Model struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Percentage is a two-decimal progress value. It is stored as numeric(5,2)
// and always rendered with exactly two decimals ("33.33", "100.00").
type Percentage struct {
	decimal.Decimal
}

var (
	ZeroPercentage = Percentage{decimal.Zero}
	FullPercentage = Percentage{decimal.NewFromInt(100)}
)

func NewPercentage(d decimal.Decimal) Percentage {
	return Percentage{d.Round(2)}
}

func (p Percentage) String() string {
	return p.StringFixed(2)
}

func (p Percentage) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.StringFixed(2))), nil
}

// All returns every model handled by the migrator.
func All() []interface{} {
	return []interface{}{
		&User{},
		&RevokedToken{},
		&Program{},
		&CourseModule{},
		&Enrollment{},
		&Invoice{},
		&CompletedModule{},
		&Certificate{},
		&Discussion{},
		&Comment{},
		&Like{},
	}
}
