package db

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

func expectOneRow(result sql.Result, action string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if int(rowsAffected) != 1 {
		return errors.Errorf("expected %d and %s %d", 1, action, rowsAffected)
	}

	return nil
}

func formatDate(date sql.NullTime) string {
	if !date.Valid {
		return ""
	}
	return date.Time.Format(ConstLayoutDate)
}

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse(ConstLayoutDate, date)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q", date)
	}
	return t, nil
}
