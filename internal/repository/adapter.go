package repository

import (
	"database/sql"
	"strings"

	"github.com/Olprog59/go-carehome/internal/ports"
	"github.com/Olprog59/go-carehome/internal/repository/sqlite"
)

// Compile-time checks to ensure all Factory implementations satisfy DatabaseFactory interface
// If a Factory doesn't implement all methods, the code won't compile
// Vérifications à la compilation pour s'assurer que toutes les implémentations de Factory satisfont l'interface DatabaseFactory
// Si une Factory n'implémente pas toutes les méthodes, le code ne compilera pas
var _ DatabaseFactory = (*sqlite.Factory)(nil)

// factoryRegistry holds all database factories / Registre de toutes les factories de BD
// No switch statements - just a map lookup / Pas de switch - juste une recherche dans la map
// The records are mandated to live in one local encrypted SQLite file, so
// SQLite is the only registered backend.
var factoryRegistry = map[string]DatabaseFactory{
	"sqlite":  &sqlite.Factory{},
	"sqlite3": &sqlite.Factory{},
}

// Adapter adapts database connection to repositories / Adapte la connexion BD vers les repositories
type Adapter struct {
	db      *sql.DB
	factory DatabaseFactory
}

// NewAdapter creates repository adapter / Crée l'adapteur de repositories
func NewAdapter(db *sql.DB, driver string) *Adapter {
	// Lookup factory from registry (no switch needed)
	// Recherche la factory dans le registre (pas de switch nécessaire)
	factory := factoryRegistry[strings.ToLower(driver)]
	if factory == nil {
		factory = &sqlite.Factory{} // default fallback
	}

	return &Adapter{
		db:      db,
		factory: factory,
	}
}

// PatientRepository returns appropriate patient repository / Retourne le repository patient approprié
func (a *Adapter) PatientRepository() ports.PatientRepository {
	return a.factory.NewPatientRepository(a.db)
}

// NurseRepository returns appropriate nurse repository / Retourne le repository des soignants approprié
func (a *Adapter) NurseRepository() ports.NurseRepository {
	return a.factory.NewNurseRepository(a.db)
}

// AdminRepository returns appropriate admin repository / Retourne le repository des administrateurs approprié
func (a *Adapter) AdminRepository() ports.AdminRepository {
	return a.factory.NewAdminRepository(a.db)
}

// TreatmentRepository returns appropriate treatment repository / Retourne le repository des séances approprié
func (a *Adapter) TreatmentRepository() ports.TreatmentRepository {
	return a.factory.NewTreatmentRepository(a.db)
}

// ArchivePatientRepository returns appropriate archive patient repository / Retourne le repository des patients archivés
func (a *Adapter) ArchivePatientRepository() ports.ArchivePatientRepository {
	return a.factory.NewArchivePatientRepository(a.db)
}

// ArchiveTreatmentRepository returns appropriate archive treatment repository / Retourne le repository des séances archivées
func (a *Adapter) ArchiveTreatmentRepository() ports.ArchiveTreatmentRepository {
	return a.factory.NewArchiveTreatmentRepository(a.db)
}
