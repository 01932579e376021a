package domain

import "time"

// RetentionYears is the default archive retention for treatments,
// counted from the treatment date.
const RetentionYears = 10

// Treatment represents one care session of a patient / Représente une séance de soins d'un patient
type Treatment struct {
	ID          int64
	PatientID   int64 // Owning patient, enforced by foreign key / Patient propriétaire, imposé par clé étrangère
	Date        time.Time
	Begin       time.Time // Clock time only, persisted as HH:mm / Heure seule, persistée au format HH:mm
	End         time.Time
	Description string
	Remarks     string
	Archived    bool
	DeleteDate  *time.Time // Retention expiry, set on archival / Date d'expiration de rétention
	Comment     string     // Closing comment supplied on archival / Commentaire de clôture fourni à l'archivage
}

// Status renders the flag for display / Rend l'indicateur pour l'affichage
func (t *Treatment) Status() string {
	if t.Archived {
		return "Archived"
	}
	return "Active"
}

// DefaultExpiry computes the retention expiry from the treatment date.
// Used when the caller supplies no explicit override.
func (t *Treatment) DefaultExpiry() time.Time {
	return t.Date.AddDate(RetentionYears, 0, 0)
}
