package utils

import (
	"time"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// DateRange is a day-granular [From, To] filter: From is moved to the start
// of its day and To to the end of its day.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r DateRange) Scope(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.From != nil {
			db = db.Where(column+" >= ?", now.With(r.From.UTC()).BeginningOfDay())
		}
		if r.To != nil {
			db = db.Where(column+" <= ?", now.With(r.To.UTC()).EndOfDay())
		}
		return db
	}
}
