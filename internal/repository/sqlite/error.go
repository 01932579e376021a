package sqlite

import (
	"database/sql"
	"errors"
	"log"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/Olprog59/go-carehome/internal/repository/db"
)

// Re-exports so callers inside this package stay short / Ré-exports pour garder les appels courts
var (
	ErrNoRecord   = db.ErrNoRecord
	ErrConstraint = db.ErrConstraint
	ErrForeignKey = db.ErrForeignKeyViolation
)

// handleError translates DB errors to typed errors / Traduit les erreurs DB en erreurs typées
func handleError(err error) error {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoRecord
		}
		var liteErr sqlite3.Error
		if errors.As(err, &liteErr) {
			switch liteErr.ExtendedCode {
			case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
				return ErrConstraint
			case sqlite3.ErrConstraintForeignKey:
				return ErrForeignKey
			}
			switch liteErr.Code {
			case sqlite3.ErrConstraint:
				return ErrConstraint
			case sqlite3.ErrBusy, sqlite3.ErrLocked:
				log.Printf("Database is busy: %s", liteErr.Error())
				return db.ErrUnavailable
			case sqlite3.ErrNotADB, sqlite3.ErrCantOpen:
				return db.ErrUnavailable
			}
			log.Printf("SQLite error code: %d, message: %s", liteErr.Code, liteErr.Error())
		}
	}
	return err
}
