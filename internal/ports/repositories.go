package ports

import (
	"context"
	"io"
	"time"

	"github.com/Olprog59/go-carehome/internal/domain"
)

// Repository is the generic persistence contract shared by every record type.
// Contrat de persistance générique partagé par tous les types d'enregistrement.
//
// Behavioral notes, identical across implementations:
//   - Create does not hand the generated identifier back; callers re-read.
//   - Read returns db.ErrNoRecord for absent ids, it never panics.
//   - Update is an idempotent no-op when the id does not exist.
//   - DeleteByID is idempotent; deleting an absent id is not an error.
//   - ExportByID serializes one record to w as a self-describing document.
type Repository[T any] interface {
	// Create inserts a new record / Insère un nouvel enregistrement
	Create(ctx context.Context, record *T) error

	// Read retrieves a record by its identifier / Récupère un enregistrement par son identifiant
	Read(ctx context.Context, id int64) (*T, error)

	// ReadAll retrieves every record, id ascending / Récupère tous les enregistrements, id croissant
	ReadAll(ctx context.Context) ([]*T, error)

	// Update overwrites the full row keyed by identifier / Écrase la ligne complète par identifiant
	Update(ctx context.Context, record *T) error

	// DeleteByID removes the record / Supprime l'enregistrement
	DeleteByID(ctx context.Context, id int64) error

	// ExportByID serializes one record for transfer / Sérialise un enregistrement pour le transfert
	ExportByID(ctx context.Context, id int64, w io.Writer) error
}

// PatientRepository persists live patient records / Persiste les dossiers patients actifs
type PatientRepository interface {
	Repository[domain.Patient]

	// WithTx returns the repository rebound to a transaction / Retourne le repository lié à une transaction
	WithTx(dbtx DBTX) PatientRepository
}

// NurseRepository persists nurse records / Persiste les dossiers des soignants
type NurseRepository interface {
	Repository[domain.Nurse]

	// GetByFirstName looks a nurse up by exact first-name match / Recherche un soignant par prénom exact
	GetByFirstName(ctx context.Context, firstName string) (*domain.Nurse, error)

	WithTx(dbtx DBTX) NurseRepository
}

// AdminRepository persists administrator records / Persiste les comptes administrateurs
type AdminRepository interface {
	Repository[domain.Admin]

	// GetByFirstName looks an admin up by exact first-name match / Recherche un administrateur par prénom exact
	GetByFirstName(ctx context.Context, firstName string) (*domain.Admin, error)

	WithTx(dbtx DBTX) AdminRepository
}

// TreatmentRepository persists live treatment records / Persiste les séances de soins actives
type TreatmentRepository interface {
	Repository[domain.Treatment]

	// ReadAllByPatient retrieves the treatments of one patient / Récupère les séances d'un patient
	ReadAllByPatient(ctx context.Context, patientID int64) ([]*domain.Treatment, error)

	WithTx(dbtx DBTX) TreatmentRepository
}

// ArchivePatientRepository holds archived patient rows pending purge.
// Contient les dossiers patients archivés en attente de purge.
type ArchivePatientRepository interface {
	Repository[domain.Patient]

	// PurgeExpired deletes rows whose retention expiry is on or before the given day.
	// Idempotent: purging already-removed rows is a no-op.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)

	WithTx(dbtx DBTX) ArchivePatientRepository
}

// ArchiveTreatmentRepository holds archived treatment rows pending purge.
// Contient les séances archivées en attente de purge.
type ArchiveTreatmentRepository interface {
	Repository[domain.Treatment]

	ReadAllByPatient(ctx context.Context, patientID int64) ([]*domain.Treatment, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)

	WithTx(dbtx DBTX) ArchiveTreatmentRepository
}
