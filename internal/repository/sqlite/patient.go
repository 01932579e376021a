package sqlite

import (
	"database/sql"

	"github.com/Olprog59/go-carehome/internal/domain"
	"github.com/Olprog59/go-carehome/internal/dto"
	"github.com/Olprog59/go-carehome/internal/ports"
)

var _ ports.PatientRepository = (*patientRepository)(nil)

// patientMapping binds domain.Patient to the live patient table.
var patientMapping = &tableMapping[domain.Patient]{
	table:    "patient",
	idColumn: "pid",
	columns: []string{
		"first_name", "surname", "date_of_birth",
		"care_level", "room_number", "status", "delete_date",
	},
	id: func(p *domain.Patient) int64 { return p.ID },
	values: func(p *domain.Patient) []any {
		return []any{
			p.FirstName, p.Surname, domain.FormatDate(p.DateOfBirth),
			p.CareLevel, p.RoomNumber, p.Archived, nullDate(p.DeleteDate),
		}
	},
	scan:   scanPatientRow,
	entity: "patient",
	export: func(p *domain.Patient) any { return dto.PatientToExport(p) },
}

func scanPatientRow(s rowScanner) (*domain.Patient, error) {
	var (
		p          domain.Patient
		dob        string
		deleteDate sql.NullString
	)
	if err := s.Scan(&p.ID, &p.FirstName, &p.Surname, &dob,
		&p.CareLevel, &p.RoomNumber, &p.Archived, &deleteDate); err != nil {
		return nil, err
	}

	var err error
	if p.DateOfBirth, err = domain.ParseDate(dob); err != nil {
		return nil, err
	}
	if p.DeleteDate, err = parseNullDate(deleteDate); err != nil {
		return nil, err
	}
	return &p, nil
}

// patientRepository implements PatientRepository for SQLite / Implémente PatientRepository pour SQLite
type patientRepository struct {
	crudRepository[domain.Patient]
}

// NewPatientRepository creates patient repository / Crée le repository patient
func NewPatientRepository(db *sql.DB) ports.PatientRepository {
	return &patientRepository{crudRepository[domain.Patient]{db: db, m: patientMapping}}
}

// WithTx returns repository bound to a transaction / Retourne le repository lié à une transaction
func (r *patientRepository) WithTx(dbtx ports.DBTX) ports.PatientRepository {
	return &patientRepository{crudRepository[domain.Patient]{db: dbtx, m: patientMapping}}
}
