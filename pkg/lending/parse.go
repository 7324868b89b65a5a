package lending

import (
	"strconv"
	"strings"

	"github.com/shishobooks/circulation/pkg/errcodes"
)

// ParseDays turns the raw loan length typed by a user into a day count.
func ParseDays(raw string) (int, error) {
	days, err := parsePositive("days", raw)
	if err != nil {
		return 0, err
	}
	if err := validateDays(days); err != nil {
		return 0, err
	}
	return days, nil
}

// ParseID turns a raw id for the named field into an integer id.
func ParseID(field, raw string) (int, error) {
	return parsePositive(field, raw)
}

func parsePositive(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errcodes.ValidationError(`"` + field + `" is required`)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errcodes.ValidationError(`"` + field + `" must be a whole number`)
	}
	if err := validatePositive(field, n); err != nil {
		return 0, err
	}
	return n, nil
}
