package sqlite

import (
	"context"
	"database/sql"

	"github.com/Olprog59/go-carehome/internal/domain"
	"github.com/Olprog59/go-carehome/internal/dto"
	"github.com/Olprog59/go-carehome/internal/ports"
)

var _ ports.AdminRepository = (*adminRepository)(nil)

var adminMapping = &tableMapping[domain.Admin]{
	table:    "admin",
	idColumn: "aid",
	columns:  []string{"first_name", "surname", "password_hash"},
	id:       func(a *domain.Admin) int64 { return a.ID },
	values: func(a *domain.Admin) []any {
		return []any{a.FirstName, a.Surname, a.PasswordHash}
	},
	scan:   scanAdminRow,
	entity: "admin",
	export: func(a *domain.Admin) any { return dto.AdminToExport(a) },
}

func scanAdminRow(s rowScanner) (*domain.Admin, error) {
	var a domain.Admin
	if err := s.Scan(&a.ID, &a.FirstName, &a.Surname, &a.PasswordHash); err != nil {
		return nil, err
	}
	return &a, nil
}

// adminRepository implements AdminRepository for SQLite / Implémente AdminRepository pour SQLite
type adminRepository struct {
	crudRepository[domain.Admin]
}

// NewAdminRepository creates admin repository / Crée le repository des administrateurs
func NewAdminRepository(db *sql.DB) ports.AdminRepository {
	return &adminRepository{crudRepository[domain.Admin]{db: db, m: adminMapping}}
}

// GetByFirstName retrieves an admin by exact first-name match.
func (r *adminRepository) GetByFirstName(ctx context.Context, firstName string) (*domain.Admin, error) {
	query := `SELECT aid, first_name, surname, password_hash FROM admin WHERE first_name = ?`
	admin, err := scanAdminRow(r.db.QueryRowContext(ctx, query, firstName))
	if err != nil {
		return nil, handleError(err)
	}
	return admin, nil
}

// WithTx returns repository bound to a transaction / Retourne le repository lié à une transaction
func (r *adminRepository) WithTx(dbtx ports.DBTX) ports.AdminRepository {
	return &adminRepository{crudRepository[domain.Admin]{db: dbtx, m: adminMapping}}
}
