package utils

import (
	"math"
	"sort"
	"strings"

	"elearning/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageQuery is the common list input: ?page=2&limit=20&sort=-createdAt
type PageQuery struct {
	Page  int    `query:"page" validate:"omitempty,min=1"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Sort  string `query:"sort" validate:"omitempty,max=64"`
}

func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	return q
}

func (q PageQuery) Offset() int {
	q = q.Normalize()
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	CurrentRecords int   `json:"currentRecords"`
	TotalRecords   int64 `json:"totalRecords"`
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	NextPage       *int  `json:"nextPage"`
	PrevPage       *int  `json:"prevPage"`
}

// NewPagination builds the pagination block for a page holding current rows
// out of total.
func NewPagination(q PageQuery, total int64, current int) Pagination {
	q = q.Normalize()
	totalPages := int(math.Ceil(float64(total) / float64(q.Limit)))

	p := Pagination{
		CurrentRecords: current,
		TotalRecords:   total,
		CurrentPage:    q.Page,
		TotalPages:     totalPages,
	}
	if q.Page < totalPages {
		next := q.Page + 1
		p.NextPage = &next
	}
	if q.Page <= totalPages+1 && q.Page > 1 {
		prev := q.Page - 1
		p.PrevPage = &prev
	}
	return p
}

// Paginate applies LIMIT/OFFSET for q.
func Paginate(q PageQuery) func(db *gorm.DB) *gorm.DB {
	q = q.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.Limit)
	}
}

// SortScope orders by a whitelisted key. allowed maps the API name
// ("createdAt") to a column ("enrollments.created_at"). A leading "-" sorts
// descending. An empty sort falls back to fallback, which must be a key of
// allowed.
func SortScope(by string, allowed map[string]string, fallback string) (func(db *gorm.DB) *gorm.DB, error) {
	by = strings.TrimSpace(by)
	if by == "" {
		by = fallback
	}
	desc := strings.HasPrefix(by, "-")
	key := strings.TrimPrefix(by, "-")

	column, ok := allowed[key]
	if !ok {
		keys := make([]string, 0, len(allowed))
		for k := range allowed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, apperr.Validation("Invalid sort field", apperr.Ctx("sort", by), apperr.Ctx("allowed", strings.Join(keys, ",")))
	}

	return func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}, nil
}
