package repository

import (
	"database/sql"
)

// requireRowAffected maps zero-row writes to sql.ErrNoRows so services can
// translate them into not-found responses.
func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
