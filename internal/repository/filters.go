package repository

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern for a substring search.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

// textSearch describes how a free-text query maps onto a listing's columns.
type textSearch struct {
	// columns get a case-insensitive substring match on the raw query.
	columns []string
	// numberCol is matched exactly against the digits of the query, so "RO-000042" finds 42.
	numberCol string
	// phoneCol is matched against the digits of a formatted phone query such as "8 (999) 111-22-33".
	phoneCol string
}

func (s textSearch) apply(db *gorm.DB, q string) *gorm.DB {
	q = strings.TrimSpace(q)
	if q == "" {
		return db
	}
	pattern := containsPattern(q)

	var (
		clauses []string
		args    []any
	)
	for _, col := range s.columns {
		clauses = append(clauses, "LOWER("+col+") LIKE ? ESCAPE '\\'")
		args = append(args, pattern)
	}

	digits := digitsOf(q)
	if s.numberCol != "" && digits != "" {
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			clauses = append(clauses, s.numberCol+" = ?")
			args = append(args, n)
		}
	}
	if s.phoneCol != "" && digits != "" && digits != q {
		for _, variant := range phoneVariants(digits) {
			clauses = append(clauses, s.phoneCol+" LIKE ?")
			args = append(args, "%"+variant+"%")
		}
	}
	return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func digitsOf(q string) string {
	var b strings.Builder
	for _, r := range q {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// phoneVariants also tries the +7 form of a domestic number written with a leading 8.
func phoneVariants(digits string) []string {
	if len(digits) == 11 && digits[0] == '8' {
		return []string{digits, "7" + digits[1:]}
	}
	return []string{digits}
}

// ListParams carries pagination for list queries. Zero Limit means no limit.
type ListParams struct {
	Offset int
	Limit  int
}

func (p ListParams) apply(db *gorm.DB) *gorm.DB {
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	return db
}
