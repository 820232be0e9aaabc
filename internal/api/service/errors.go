package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound covers missing resources and missing nested parents.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is returned when the caller's role/authorship is
	// insufficient for a write.
	ErrPermissionDenied = errors.New("permission denied")
)

// FieldErrors is a validation failure keyed by field name. Handlers render
// it verbatim as a 400 body so clients see per-field messages.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e[k], "; ")))
	}
	return strings.Join(parts, "; ")
}

func fieldError(field, message string) FieldErrors {
	return FieldErrors{field: {message}}
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally on a constraint whose name contains one of names.
func isUniqueViolation(err error, names ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	if len(names) == 0 {
		return true
	}
	for _, n := range names {
		if strings.Contains(pgErr.ConstraintName, n) {
			return true
		}
	}
	return false
}
