package sqlite

import (
	"database/sql"

	"github.com/Olprog59/go-carehome/internal/ports"
)

// Factory implements DatabaseFactory for SQLite / Implémente DatabaseFactory pour SQLite
// The compile-time check is in adapter.go to avoid import cycles
// La vérification à la compilation est dans adapter.go pour éviter les cycles d'imports
type Factory struct{}

// NewPatientRepository creates patient repository / Crée le repository patient
func (f *Factory) NewPatientRepository(db *sql.DB) ports.PatientRepository {
	return NewPatientRepository(db)
}

// NewNurseRepository creates nurse repository / Crée le repository des soignants
func (f *Factory) NewNurseRepository(db *sql.DB) ports.NurseRepository {
	return NewNurseRepository(db)
}

// NewAdminRepository creates admin repository / Crée le repository des administrateurs
func (f *Factory) NewAdminRepository(db *sql.DB) ports.AdminRepository {
	return NewAdminRepository(db)
}

// NewTreatmentRepository creates treatment repository / Crée le repository des séances
func (f *Factory) NewTreatmentRepository(db *sql.DB) ports.TreatmentRepository {
	return NewTreatmentRepository(db)
}

// NewArchivePatientRepository creates archive patient repository / Crée le repository des patients archivés
func (f *Factory) NewArchivePatientRepository(db *sql.DB) ports.ArchivePatientRepository {
	return NewArchivePatientRepository(db)
}

// NewArchiveTreatmentRepository creates archive treatment repository / Crée le repository des séances archivées
func (f *Factory) NewArchiveTreatmentRepository(db *sql.DB) ports.ArchiveTreatmentRepository {
	return NewArchiveTreatmentRepository(db)
}
