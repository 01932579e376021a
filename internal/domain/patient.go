package domain

import "time"

// ArchiveOutcome records why a patient left active care / Indique pourquoi un patient a quitté les soins actifs
type ArchiveOutcome string

const (
	OutcomeDischarged ArchiveOutcome = "discharged"
	OutcomeDeceased   ArchiveOutcome = "deceased"
)

// IsValid checks if the outcome is a known selector / Vérifie si le motif est un sélecteur connu
func (o ArchiveOutcome) IsValid() bool {
	return o == OutcomeDischarged || o == OutcomeDeceased
}

// Patient represents a resident of the home / Représente un résident de l'établissement
type Patient struct {
	Person
	ID          int64
	DateOfBirth time.Time
	CareLevel   string
	RoomNumber  string
	Archived    bool       // Status flag mirrored in the live row / Indicateur d'état reflété dans la ligne active
	DeleteDate  *time.Time // Retention expiry, set on archival / Date d'expiration de rétention, fixée à l'archivage
	Outcome     ArchiveOutcome
}

// Status renders the flag for display / Rend l'indicateur pour l'affichage
func (p *Patient) Status() string {
	if p.Archived {
		return "Archived"
	}
	return "Active"
}
