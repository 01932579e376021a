package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Olprog59/go-carehome/internal/domain"
	"github.com/Olprog59/go-carehome/internal/dto"
	"github.com/Olprog59/go-carehome/internal/ports"
)

var _ ports.ArchivePatientRepository = (*archivePatientRepository)(nil)

// archivePatientMapping binds domain.Patient to the archive table. keepID:
// the archived row keeps the original patient id, identifiers are never
// reassigned.
var archivePatientMapping = &tableMapping[domain.Patient]{
	table:    "archive_patient",
	idColumn: "pid",
	keepID:   true,
	columns: []string{
		"first_name", "surname", "date_of_birth",
		"care_level", "room_number", "status", "delete_date", "outcome",
	},
	id: func(p *domain.Patient) int64 { return p.ID },
	values: func(p *domain.Patient) []any {
		return []any{
			p.FirstName, p.Surname, domain.FormatDate(p.DateOfBirth),
			p.CareLevel, p.RoomNumber, p.Archived,
			nullDate(p.DeleteDate), string(p.Outcome),
		}
	},
	scan:   scanArchivedPatientRow,
	entity: "archived_patient",
	export: func(p *domain.Patient) any { return dto.PatientToExport(p) },
}

func scanArchivedPatientRow(s rowScanner) (*domain.Patient, error) {
	var (
		p          domain.Patient
		dob        string
		deleteDate sql.NullString
		outcome    string
	)
	if err := s.Scan(&p.ID, &p.FirstName, &p.Surname, &dob,
		&p.CareLevel, &p.RoomNumber, &p.Archived, &deleteDate, &outcome); err != nil {
		return nil, err
	}

	var err error
	if p.DateOfBirth, err = domain.ParseDate(dob); err != nil {
		return nil, err
	}
	if p.DeleteDate, err = parseNullDate(deleteDate); err != nil {
		return nil, err
	}
	p.Outcome = domain.ArchiveOutcome(outcome)
	return &p, nil
}

// archivePatientRepository implements ArchivePatientRepository for SQLite.
// Implémente ArchivePatientRepository pour SQLite.
type archivePatientRepository struct {
	crudRepository[domain.Patient]
}

// NewArchivePatientRepository creates archive patient repository / Crée le repository des patients archivés
func NewArchivePatientRepository(db *sql.DB) ports.ArchivePatientRepository {
	return &archivePatientRepository{crudRepository[domain.Patient]{db: db, m: archivePatientMapping}}
}

// PurgeExpired deletes archived patients whose retention expiry is on or
// before the given day. Rows without an expiry are never purged. Idempotent.
func (r *archivePatientRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM archive_patient WHERE delete_date <= ?`
	result, err := r.db.ExecContext(ctx, query, domain.FormatDate(before))
	if err != nil {
		return 0, handleError(err)
	}
	purged, err := result.RowsAffected()
	if err != nil {
		return 0, handleError(err)
	}
	return purged, nil
}

// WithTx returns repository bound to a transaction / Retourne le repository lié à une transaction
func (r *archivePatientRepository) WithTx(dbtx ports.DBTX) ports.ArchivePatientRepository {
	return &archivePatientRepository{crudRepository[domain.Patient]{db: dbtx, m: archivePatientMapping}}
}
