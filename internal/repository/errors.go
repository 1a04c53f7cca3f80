package repository

import "errors"

// ErrNotFound is the repository-local sentinel returned when a query for a
// single entity finds no rows. The service layer translates it into the
// domain-level not-found error, so business logic never depends on the
// database driver's own errors (e.g. sql.ErrNoRows).
var ErrNotFound = errors.New("repository: not found")
