package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// dateOrToday reads ?date=, falling back to the shop's current day.
// The value itself is validated by the use case.
func dateOrToday(c *gin.Context, clock timezone.Clock) string {
	if d := strings.TrimSpace(c.Query("date")); d != "" {
		return d
	}
	return timezone.Today(clock())
}

// yearMonthOrCurrent reads ?year= and ?month=, defaulting each to the
// shop's current one.
func yearMonthOrCurrent(c *gin.Context, clock timezone.Clock) (int, int, error) {
	now := clock()
	year, month := now.Year(), int(now.Month())

	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, httperr.Validation("invalid_month", "year must be a number")
		}
		year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, httperr.Validation("invalid_month", "month must be a number")
		}
		month = n
	}
	return year, month, nil
}

func uintParam(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, httperr.Validation("invalid_"+name, name+" must be a positive integer")
	}
	return uint(n), nil
}

func uintQuery(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || n == 0 {
		return 0, httperr.Validation("invalid_"+name, name+" must be a positive integer")
	}
	return uint(n), nil
}
