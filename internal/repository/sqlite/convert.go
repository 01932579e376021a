package sqlite

import (
	"database/sql"
	"time"

	"github.com/Olprog59/go-carehome/internal/domain"
)

// nullDate encodes an optional date for storage / Encode une date optionnelle pour le stockage
func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return domain.FormatDate(*t)
}

// parseNullDate decodes an optional stored date / Décode une date optionnelle stockée
func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
