package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate reports a unique-constraint violation (duplicate email,
// duplicate enrollment). Concurrent writers race down to the store
// constraint; the loser sees this error.
var ErrDuplicate = errors.New("duplicate key")

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
