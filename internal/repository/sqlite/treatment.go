package sqlite

import (
	"context"
	"database/sql"

	"github.com/Olprog59/go-carehome/internal/domain"
	"github.com/Olprog59/go-carehome/internal/dto"
	"github.com/Olprog59/go-carehome/internal/ports"
)

var _ ports.TreatmentRepository = (*treatmentRepository)(nil)

var treatmentMapping = &tableMapping[domain.Treatment]{
	table:    "treatment",
	idColumn: "tid",
	columns: []string{
		"pid", "treatment_date", "begin_time", "end_time",
		"description", "remark", "status", "delete_date", "comment",
	},
	id: func(t *domain.Treatment) int64 { return t.ID },
	values: func(t *domain.Treatment) []any {
		return []any{
			t.PatientID, domain.FormatDate(t.Date),
			domain.FormatClock(t.Begin), domain.FormatClock(t.End),
			t.Description, t.Remarks, t.Archived,
			nullDate(t.DeleteDate), t.Comment,
		}
	},
	scan:   scanTreatmentRow,
	entity: "treatment",
	export: func(t *domain.Treatment) any { return dto.TreatmentToExport(t) },
}

func scanTreatmentRow(s rowScanner) (*domain.Treatment, error) {
	var (
		t          domain.Treatment
		date       string
		begin, end string
		deleteDate sql.NullString
	)
	if err := s.Scan(&t.ID, &t.PatientID, &date, &begin, &end,
		&t.Description, &t.Remarks, &t.Archived, &deleteDate, &t.Comment); err != nil {
		return nil, err
	}

	var err error
	if t.Date, err = domain.ParseDate(date); err != nil {
		return nil, err
	}
	if t.Begin, err = domain.ParseClock(begin); err != nil {
		return nil, err
	}
	if t.End, err = domain.ParseClock(end); err != nil {
		return nil, err
	}
	if t.DeleteDate, err = parseNullDate(deleteDate); err != nil {
		return nil, err
	}
	return &t, nil
}

// treatmentRepository implements TreatmentRepository for SQLite / Implémente TreatmentRepository pour SQLite
type treatmentRepository struct {
	crudRepository[domain.Treatment]
}

// NewTreatmentRepository creates treatment repository / Crée le repository des séances
func NewTreatmentRepository(db *sql.DB) ports.TreatmentRepository {
	return &treatmentRepository{crudRepository[domain.Treatment]{db: db, m: treatmentMapping}}
}

// ReadAllByPatient retrieves every live treatment of one patient / Récupère les séances actives d'un patient
func (r *treatmentRepository) ReadAllByPatient(ctx context.Context, patientID int64) ([]*domain.Treatment, error) {
	query := `SELECT tid, pid, treatment_date, begin_time, end_time,
	                 description, remark, status, delete_date, comment
	          FROM treatment WHERE pid = ? ORDER BY tid`
	return r.queryMany(ctx, query, patientID)
}

// WithTx returns repository bound to a transaction / Retourne le repository lié à une transaction
func (r *treatmentRepository) WithTx(dbtx ports.DBTX) ports.TreatmentRepository {
	return &treatmentRepository{crudRepository[domain.Treatment]{db: dbtx, m: treatmentMapping}}
}
