package service

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/satheeshds/contactbook/models"
)

// Defaults applied when a list request does not carry usable values.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ParsePositive reads the leading integer of s, so "2abc" and "2.5" both
// give 2. It returns def when s has no leading digits or the value is not
// positive. Values too large for an int saturate at math.MaxInt.
func ParsePositive(s string, def int) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	s = strings.TrimPrefix(s, "+")
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt
	}
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Offset returns the number of rows preceding the given 1-indexed page.
// ok is false when that number does not fit in an int.
func Offset(page, limit int) (offset int, ok bool) {
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

// Paginate computes the metadata for page of size limit over total records.
func Paginate(page, limit, total int) models.Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return models.Pagination{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalContacts: total,
		HasNext:       page < totalPages,
		HasPrev:       page > 1,
	}
}
