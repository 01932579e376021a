package repository

import (
	"database/sql"

	"github.com/Olprog59/go-carehome/internal/ports"
)

// DatabaseFactory must be implemented by each database package / Doit être implémenté par chaque package de BD
// This interface ensures compile-time safety: if you add a new repository,
// you MUST implement it for every registered database package.
// Cette interface garantit la sécurité à la compilation : si tu ajoutes un nouveau repository,
// tu DOIS l'implémenter pour chaque package de BD enregistré.
type DatabaseFactory interface {
	// NewPatientRepository creates patient repository / Crée le repository patient
	NewPatientRepository(db *sql.DB) ports.PatientRepository

	// NewNurseRepository creates nurse repository / Crée le repository des soignants
	NewNurseRepository(db *sql.DB) ports.NurseRepository

	// NewAdminRepository creates admin repository / Crée le repository des administrateurs
	NewAdminRepository(db *sql.DB) ports.AdminRepository

	// NewTreatmentRepository creates treatment repository / Crée le repository des séances
	NewTreatmentRepository(db *sql.DB) ports.TreatmentRepository

	// NewArchivePatientRepository creates archive patient repository / Crée le repository des patients archivés
	NewArchivePatientRepository(db *sql.DB) ports.ArchivePatientRepository

	// NewArchiveTreatmentRepository creates archive treatment repository / Crée le repository des séances archivées
	NewArchiveTreatmentRepository(db *sql.DB) ports.ArchiveTreatmentRepository
}
