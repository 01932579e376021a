package repository

import (
	"github.com/Olprog59/go-carehome/internal/repository/db"
)

// Re-export common errors for convenience / Ré-exporte les erreurs communes par commodité
var (
	ErrNoRecord            = db.ErrNoRecord
	ErrConstraint          = db.ErrConstraint
	ErrForeignKeyViolation = db.ErrForeignKeyViolation
	ErrUnavailable         = db.ErrUnavailable
)
