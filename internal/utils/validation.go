package utils

import (
	"strconv"
	"strings"
	"time"

	"supertask/backend"
)

// ParseDateFlag parses a deadline in YYYY-MM-DD format.
// Returns nil, nil for an empty string (no deadline).
func ParseDateFlag(dateStr string) (*time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil, nil
	}

	parsed, err := backend.ParseDate(dateStr)
	if err != nil {
		return nil, ErrInvalidDate(dateStr)
	}

	return &parsed, nil
}

// ParsePriority resolves a priority flag against the table. Accepts the key
// ("1".."3") or the level name; empty input yields the default priority.
func ParsePriority(input string, table backend.PriorityTable) (backend.Priority, error) {
	p, ok := table.ResolvePriority(strings.TrimSpace(input))
	if !ok {
		var valid []string
		for _, l := range table {
			valid = append(valid, string(l.Key)+" ("+l.Name+")")
		}
		return "", ErrInvalidPriority(input, valid)
	}
	return p, nil
}

// ParseIndex parses a 1-based task number typed by the user. It does not
// check the range; that is up to the command handler.
func ParseIndex(input string) (int, error) {
	trimmed := strings.TrimSpace(input)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, NewInvalidIndexError(trimmed)
	}
	return n, nil
}
