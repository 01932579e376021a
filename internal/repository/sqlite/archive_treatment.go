package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Olprog59/go-carehome/internal/domain"
	"github.com/Olprog59/go-carehome/internal/dto"
	"github.com/Olprog59/go-carehome/internal/ports"
)

var _ ports.ArchiveTreatmentRepository = (*archiveTreatmentRepository)(nil)

// archiveTreatmentMapping reuses the treatment scanner; the archive table
// mirrors the live columns and keeps the original treatment id.
var archiveTreatmentMapping = &tableMapping[domain.Treatment]{
	table:    "archive_treatment",
	idColumn: "tid",
	keepID:   true,
	columns: []string{
		"pid", "treatment_date", "begin_time", "end_time",
		"description", "remark", "status", "delete_date", "comment",
	},
	id:     treatmentMapping.id,
	values: treatmentMapping.values,
	scan:   scanTreatmentRow,
	entity: "archived_treatment",
	export: func(t *domain.Treatment) any { return dto.TreatmentToExport(t) },
}

// archiveTreatmentRepository implements ArchiveTreatmentRepository for SQLite.
// Implémente ArchiveTreatmentRepository pour SQLite.
type archiveTreatmentRepository struct {
	crudRepository[domain.Treatment]
}

// NewArchiveTreatmentRepository creates archive treatment repository / Crée le repository des séances archivées
func NewArchiveTreatmentRepository(db *sql.DB) ports.ArchiveTreatmentRepository {
	return &archiveTreatmentRepository{crudRepository[domain.Treatment]{db: db, m: archiveTreatmentMapping}}
}

// ReadAllByPatient retrieves the archived treatments of one patient / Récupère les séances archivées d'un patient
func (r *archiveTreatmentRepository) ReadAllByPatient(ctx context.Context, patientID int64) ([]*domain.Treatment, error) {
	query := `SELECT tid, pid, treatment_date, begin_time, end_time,
	                 description, remark, status, delete_date, comment
	          FROM archive_treatment WHERE pid = ? ORDER BY tid`
	return r.queryMany(ctx, query, patientID)
}

// PurgeExpired deletes archived treatments past their retention expiry.
// Idempotent; rows without an expiry are never purged.
func (r *archiveTreatmentRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM archive_treatment WHERE delete_date <= ?`
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
func (r *archiveTreatmentRepository) WithTx(dbtx ports.DBTX) ports.ArchiveTreatmentRepository {
	return &archiveTreatmentRepository{crudRepository[domain.Treatment]{db: dbtx, m: archiveTreatmentMapping}}
}
