package sqlite

import (
	"context"
	"database/sql"

	"github.com/Olprog59/go-carehome/internal/domain"
	"github.com/Olprog59/go-carehome/internal/dto"
	"github.com/Olprog59/go-carehome/internal/ports"
)

var _ ports.NurseRepository = (*nurseRepository)(nil)

var nurseMapping = &tableMapping[domain.Nurse]{
	table:    "nurse",
	idColumn: "nid",
	columns:  []string{"first_name", "surname", "phone_number", "password_hash"},
	id:       func(n *domain.Nurse) int64 { return n.ID },
	values: func(n *domain.Nurse) []any {
		return []any{n.FirstName, n.Surname, n.PhoneNumber, n.PasswordHash}
	},
	scan:   scanNurseRow,
	entity: "nurse",
	export: func(n *domain.Nurse) any { return dto.NurseToExport(n) },
}

func scanNurseRow(s rowScanner) (*domain.Nurse, error) {
	var n domain.Nurse
	if err := s.Scan(&n.ID, &n.FirstName, &n.Surname, &n.PhoneNumber, &n.PasswordHash); err != nil {
		return nil, err
	}
	return &n, nil
}

// nurseRepository implements NurseRepository for SQLite / Implémente NurseRepository pour SQLite
type nurseRepository struct {
	crudRepository[domain.Nurse]
}

// NewNurseRepository creates nurse repository / Crée le repository des soignants
func NewNurseRepository(db *sql.DB) ports.NurseRepository {
	return &nurseRepository{crudRepository[domain.Nurse]{db: db, m: nurseMapping}}
}

// GetByFirstName retrieves a nurse by exact first-name match.
// The first name doubles as the login identifier.
func (r *nurseRepository) GetByFirstName(ctx context.Context, firstName string) (*domain.Nurse, error) {
	query := `SELECT nid, first_name, surname, phone_number, password_hash
	          FROM nurse WHERE first_name = ?`
	nurse, err := scanNurseRow(r.db.QueryRowContext(ctx, query, firstName))
	if err != nil {
		return nil, handleError(err)
	}
	return nurse, nil
}

// WithTx returns repository bound to a transaction / Retourne le repository lié à une transaction
func (r *nurseRepository) WithTx(dbtx ports.DBTX) ports.NurseRepository {
	return &nurseRepository{crudRepository[domain.Nurse]{db: dbtx, m: nurseMapping}}
}
