package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Olprog59/go-carehome/internal/domain"
	"github.com/Olprog59/go-carehome/internal/ports"
)

// ArchiveMetricsRecorder records archival metrics / Enregistre les métriques d'archivage
type ArchiveMetricsRecorder interface {
	RecordArchival(entity, status string)
	RecordSweep(purged int64)
}

// ArchiveService drives the Active -> Archived -> Purged lifecycle.
// Pilote le cycle de vie Actif -> Archivé -> Purgé.
//
// Archiving copies the live row into its archive table with a retention
// expiry and removes the live row in the SAME transaction; a crash between
// the two statements can never leave a duplicated or lost record.
type ArchiveService struct {
	patients           ports.PatientRepository
	treatments         ports.TreatmentRepository
	archivedPatients   ports.ArchivePatientRepository
	archivedTreatments ports.ArchiveTreatmentRepository
	db                 *sql.DB
	metrics            ArchiveMetricsRecorder
	now                func() time.Time
}

// NewArchiveService creates archival service instance / Crée une instance du service d'archivage
func NewArchiveService(
	patients ports.PatientRepository,
	treatments ports.TreatmentRepository,
	archivedPatients ports.ArchivePatientRepository,
	archivedTreatments ports.ArchiveTreatmentRepository,
	db *sql.DB,
	metrics ArchiveMetricsRecorder,
) *ArchiveService {
	return &ArchiveService{
		patients:           patients,
		treatments:         treatments,
		archivedPatients:   archivedPatients,
		archivedTreatments: archivedTreatments,
		db:                 db,
		metrics:            metrics,
		now:                time.Now,
	}
}

// ArchivePatient moves one patient into the archive / Déplace un patient vers l'archive
//
// The retention expiry is the caller-supplied date; the outcome selector is
// stored as given, business validation of WHY a patient is archived belongs
// to the caller. The patient's remaining live treatments move along in the
// same transaction (each with its own default expiry), both to honor the
// foreign key and so no record is silently dropped.
func (s *ArchiveService) ArchivePatient(ctx context.Context, patientID int64, outcome domain.ArchiveOutcome, expiry time.Time) error {
	patient, err := s.patients.Read(ctx, patientID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer tx.Rollback() // Ensure rollback on error / Garantit le rollback en cas d'erreur

	txPatients := s.patients.WithTx(tx)
	txTreatments := s.treatments.WithTx(tx)
	txArchivedPatients := s.archivedPatients.WithTx(tx)
	txArchivedTreatments := s.archivedTreatments.WithTx(tx)

	archived := *patient
	archived.Archived = true
	archived.Outcome = outcome
	archived.DeleteDate = &expiry

	if err := txArchivedPatients.Create(ctx, &archived); err != nil {
		s.metrics.RecordArchival("patient", "failure")
		return err
	}

	liveTreatments, err := txTreatments.ReadAllByPatient(ctx, patientID)
	if err != nil {
		s.metrics.RecordArchival("patient", "failure")
		return err
	}
	for _, treatment := range liveTreatments {
		if err := moveTreatment(ctx, txArchivedTreatments, txTreatments, treatment, treatment.Comment, nil); err != nil {
			s.metrics.RecordArchival("patient", archivalStatus(err))
			return err
		}
	}

	if err := txPatients.DeleteByID(ctx, patientID); err != nil {
		s.metrics.RecordArchival("patient", "partial")
		return fmt.Errorf("%w: %v", ErrPartialArchive, err)
	}

	if err := tx.Commit(); err != nil {
		s.metrics.RecordArchival("patient", "partial")
		return fmt.Errorf("%w: %v", ErrPartialArchive, err)
	}

	s.metrics.RecordArchival("patient", "success")
	slog.Info("patient archived",
		"pid", patientID,
		"outcome", outcome,
		"expiry", domain.FormatDate(expiry),
		"treatments_moved", len(liveTreatments),
	)

	s.sweepAfterArchive(ctx)
	return nil
}

// ArchiveTreatment moves one treatment into the archive / Déplace une séance vers l'archive
//
// The retention expiry defaults to the treatment date plus ten years unless
// expiryOverride is given. The closing comment is stored as supplied.
func (s *ArchiveService) ArchiveTreatment(ctx context.Context, treatmentID int64, comment string, expiryOverride *time.Time) error {
	treatment, err := s.treatments.Read(ctx, treatmentID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	txTreatments := s.treatments.WithTx(tx)
	txArchivedTreatments := s.archivedTreatments.WithTx(tx)

	if err := moveTreatment(ctx, txArchivedTreatments, txTreatments, treatment, comment, expiryOverride); err != nil {
		s.metrics.RecordArchival("treatment", archivalStatus(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.metrics.RecordArchival("treatment", "partial")
		return fmt.Errorf("%w: %v", ErrPartialArchive, err)
	}

	s.metrics.RecordArchival("treatment", "success")
	slog.Info("treatment archived", "tid", treatmentID, "pid", treatment.PatientID)

	s.sweepAfterArchive(ctx)
	return nil
}

// archivalStatus maps an archival error to its metric label.
func archivalStatus(err error) string {
	if errors.Is(err, ErrPartialArchive) {
		return "partial"
	}
	return "failure"
}

// moveTreatment copies one treatment into the archive and removes the live
// row, both on the caller's transaction.
func moveTreatment(
	ctx context.Context,
	archive ports.ArchiveTreatmentRepository,
	live ports.TreatmentRepository,
	treatment *domain.Treatment,
	comment string,
	expiryOverride *time.Time,
) error {
	archived := *treatment
	archived.Archived = true
	archived.Comment = comment

	expiry := archived.DefaultExpiry()
	if expiryOverride != nil {
		expiry = *expiryOverride
	}
	archived.DeleteDate = &expiry

	if err := archive.Create(ctx, &archived); err != nil {
		return err
	}
	if err := live.DeleteByID(ctx, treatment.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrPartialArchive, err)
	}
	return nil
}

// Sweep purges every archive row whose retention expiry is today or earlier.
// Purge chaque ligne d'archive dont l'expiration est aujourd'hui ou avant.
//
// At-least-once by design: safe to run repeatedly, rows already gone are a
// no-op, and rows expiring strictly in the future are never touched.
func (s *ArchiveService) Sweep(ctx context.Context) (int64, error) {
	today := domain.Today(s.now())

	patientsPurged, err := s.archivedPatients.PurgeExpired(ctx, today)
	if err != nil {
		return 0, err
	}
	treatmentsPurged, err := s.archivedTreatments.PurgeExpired(ctx, today)
	if err != nil {
		return patientsPurged, err
	}

	total := patientsPurged + treatmentsPurged
	s.metrics.RecordSweep(total)
	if total > 0 {
		slog.Info("retention sweep purged expired archive rows",
			"patients", patientsPurged,
			"treatments", treatmentsPurged,
		)
	}
	return total, nil
}

// sweepAfterArchive runs the opportunistic sweep; a failure here never
// taints the already-committed archival.
func (s *ArchiveService) sweepAfterArchive(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		slog.Error("post-archive retention sweep failed", "err", err)
	}
}

// ArchivedTreatmentsOfPatient retrieves a patient's archived treatments.
// Récupère les séances archivées d'un patient.
func (s *ArchiveService) ArchivedTreatmentsOfPatient(ctx context.Context, patientID int64) ([]*domain.Treatment, error) {
	return s.archivedTreatments.ReadAllByPatient(ctx, patientID)
}
