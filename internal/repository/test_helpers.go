package repository

import (
	"database/sql"

	"github.com/Olprog59/go-carehome/internal/ports"
	"github.com/Olprog59/go-carehome/internal/repository/sqlite"
)

// NewSQLitePatient creates SQLite patient repository for tests / Crée un repository patient SQLite pour les tests
func NewSQLitePatient(database *sql.DB) ports.PatientRepository {
	return sqlite.NewPatientRepository(database)
}

// NewSQLiteNurse creates SQLite nurse repository for tests / Crée un repository soignant SQLite pour les tests
func NewSQLiteNurse(database *sql.DB) ports.NurseRepository {
	return sqlite.NewNurseRepository(database)
}

// NewSQLiteAdmin creates SQLite admin repository for tests / Crée un repository administrateur SQLite pour les tests
func NewSQLiteAdmin(database *sql.DB) ports.AdminRepository {
	return sqlite.NewAdminRepository(database)
}

// NewSQLiteTreatment creates SQLite treatment repository for tests / Crée un repository de séances SQLite pour les tests
func NewSQLiteTreatment(database *sql.DB) ports.TreatmentRepository {
	return sqlite.NewTreatmentRepository(database)
}

// NewSQLiteArchivePatient creates SQLite archive patient repository for tests / Crée un repository de patients archivés pour les tests
func NewSQLiteArchivePatient(database *sql.DB) ports.ArchivePatientRepository {
	return sqlite.NewArchivePatientRepository(database)
}

// NewSQLiteArchiveTreatment creates SQLite archive treatment repository for tests / Crée un repository de séances archivées pour les tests
func NewSQLiteArchiveTreatment(database *sql.DB) ports.ArchiveTreatmentRepository {
	return sqlite.NewArchiveTreatmentRepository(database)
}
