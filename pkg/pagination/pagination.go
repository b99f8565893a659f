package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a window over a list result. A zero Limit means the whole list.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Error names the query parameter that could not be read.
type Error struct {
	Param string
	Value string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s must be a positive integer, got %q", e.Param, e.Value)
}

// Parse reads page and limit from the query string. Missing values take the
// defaults, a limit above MaxLimit is clamped, anything non-numeric or below 1
// is an *Error.
func Parse(c *gin.Context) (Params, error) {
	page, err := positive(c, "page", DefaultPage)
	if err != nil {
		return Params{}, err
	}
	limit, err := positive(c, "limit", DefaultLimit)
	if err != nil {
		return Params{}, err
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return New(page, limit), nil
}

func New(page, limit int) Params {
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func positive(c *gin.Context, param string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &Error{Param: param, Value: raw}
	}
	return n, nil
}

// Pages is the number of pages needed for total rows.
func (p Params) Pages(total int64) int {
	if p.Limit <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
