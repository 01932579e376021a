package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/Olprog59/go-carehome/internal/domain"
)

// ExportEnvelope wraps one exported record in a self-describing document.
// Field names survive serialization so the receiving side needs no schema.
// Enveloppe un enregistrement exporté dans un document auto-descriptif.
type ExportEnvelope struct {
	ExportID   string `json:"export_id"`   // Unique id of this export / Identifiant unique de cet export
	Entity     string `json:"entity"`      // Record type name / Nom du type d'enregistrement
	ExportedAt string `json:"exported_at"` // RFC 3339 timestamp / Horodatage RFC 3339
	Record     any    `json:"record"`
}

// NewExportEnvelope builds the envelope around an already-mapped record.
func NewExportEnvelope(entity string, record any) *ExportEnvelope {
	return &ExportEnvelope{
		ExportID:   uuid.New().String(),
		Entity:     entity,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Record:     record,
	}
}

// PatientExport is the transfer shape of a patient record / Forme de transfert d'un dossier patient
type PatientExport struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	Surname     string `json:"surname"`
	DateOfBirth string `json:"date_of_birth"`
	CareLevel   string `json:"care_level"`
	RoomNumber  string `json:"room_number"`
	Status      string `json:"status"`
	DeleteDate  string `json:"delete_date,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
}

// PatientToExport converts domain.Patient to its transfer shape / Convertit domain.Patient en forme de transfert
func PatientToExport(p *domain.Patient) *PatientExport {
	exp := &PatientExport{
		ID:          p.ID,
		FirstName:   p.FirstName,
		Surname:     p.Surname,
		DateOfBirth: domain.FormatDate(p.DateOfBirth),
		CareLevel:   p.CareLevel,
		RoomNumber:  p.RoomNumber,
		Status:      p.Status(),
		Outcome:     string(p.Outcome),
	}
	if p.DeleteDate != nil {
		exp.DeleteDate = domain.FormatDate(*p.DeleteDate)
	}
	return exp
}

// TreatmentExport is the transfer shape of a treatment record / Forme de transfert d'une séance de soins
type TreatmentExport struct {
	ID          int64  `json:"id"`
	PatientID   int64  `json:"patient_id"`
	Date        string `json:"date"`
	Begin       string `json:"begin"`
	End         string `json:"end"`
	Description string `json:"description"`
	Remarks     string `json:"remarks"`
	Status      string `json:"status"`
	DeleteDate  string `json:"delete_date,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

// TreatmentToExport converts domain.Treatment to its transfer shape / Convertit domain.Treatment en forme de transfert
func TreatmentToExport(t *domain.Treatment) *TreatmentExport {
	exp := &TreatmentExport{
		ID:          t.ID,
		PatientID:   t.PatientID,
		Date:        domain.FormatDate(t.Date),
		Begin:       domain.FormatClock(t.Begin),
		End:         domain.FormatClock(t.End),
		Description: t.Description,
		Remarks:     t.Remarks,
		Status:      t.Status(),
		Comment:     t.Comment,
	}
	if t.DeleteDate != nil {
		exp.DeleteDate = domain.FormatDate(*t.DeleteDate)
	}
	return exp
}

// NurseExport is the transfer shape of a nurse record; the password hash
// deliberately never leaves the store.
type NurseExport struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	Surname     string `json:"surname"`
	PhoneNumber string `json:"phone_number"`
}

// NurseToExport converts domain.Nurse to its transfer shape / Convertit domain.Nurse en forme de transfert
func NurseToExport(n *domain.Nurse) *NurseExport {
	return &NurseExport{
		ID:          n.ID,
		FirstName:   n.FirstName,
		Surname:     n.Surname,
		PhoneNumber: n.PhoneNumber,
	}
}

// AdminExport is the transfer shape of an admin record / Forme de transfert d'un compte administrateur
type AdminExport struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
}

// AdminToExport converts domain.Admin to its transfer shape / Convertit domain.Admin en forme de transfert
func AdminToExport(a *domain.Admin) *AdminExport {
	return &AdminExport{
		ID:        a.ID,
		FirstName: a.FirstName,
		Surname:   a.Surname,
	}
}
