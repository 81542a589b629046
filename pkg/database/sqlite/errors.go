package sqlite

import (
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// IsPrimaryKeyViolation reports whether err is a PRIMARY KEY constraint
// failure. Other constraint failures, such as NOT NULL, are not matched.
func IsPrimaryKeyViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// CheckPrimaryKeyViolation maps a PRIMARY KEY constraint failure to outErr
func CheckPrimaryKeyViolation(inErr, outErr error) error {
	if IsPrimaryKeyViolation(inErr) {
		return outErr
	}
	return inErr
}
