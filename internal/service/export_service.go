package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Olprog59/go-carehome/internal/ports"
)

// exportFunc serializes one record to w / Sérialise un enregistrement vers w
type exportFunc func(ctx context.Context, id int64, w io.Writer) error

// ExportService writes single records to self-describing JSON files.
// Écrit des enregistrements individuels dans des fichiers JSON auto-descriptifs.
type ExportService struct {
	dir       string
	exporters map[string]exportFunc // entity name -> repository export / nom d'entité -> export du repository
}

// NewExportService creates export service instance / Crée une instance du service d'export
// The entity registry mirrors the repository factory: a map lookup, no switch.
func NewExportService(
	dir string,
	patients ports.PatientRepository,
	nurses ports.NurseRepository,
	admins ports.AdminRepository,
	treatments ports.TreatmentRepository,
	archivedPatients ports.ArchivePatientRepository,
	archivedTreatments ports.ArchiveTreatmentRepository,
) *ExportService {
	return &ExportService{
		dir: dir,
		exporters: map[string]exportFunc{
			"patient":            patients.ExportByID,
			"nurse":              nurses.ExportByID,
			"admin":              admins.ExportByID,
			"treatment":          treatments.ExportByID,
			"archived_patient":   archivedPatients.ExportByID,
			"archived_treatment": archivedTreatments.ExportByID,
		},
	}
}

// Entities lists the exportable entity names / Liste les noms d'entités exportables
func (s *ExportService) Entities() []string {
	names := make([]string, 0, len(s.exporters))
	for name := range s.exporters {
		names = append(names, name)
	}
	return names
}

// ExportToFile serializes one record into a new file under the export
// directory and returns the file path. An unknown id is db.ErrNoRecord.
func (s *ExportService) ExportToFile(ctx context.Context, entity string, id int64) (string, error) {
	exporter, ok := s.exporters[entity]
	if !ok {
		return "", fmt.Errorf("unknown export entity: %q", entity)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%d-%s.json", entity, id, time.Now().Format("20060102-150405"))
	path := filepath.Join(s.dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	if err := exporter(ctx, id, file); err != nil {
		file.Close()
		os.Remove(path) // No half-written export files / Pas de fichiers d'export à moitié écrits
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize export file: %w", err)
	}

	slog.Info("record exported", "entity", entity, "id", id, "path", path)
	return path, nil
}

// Export serializes one record to the given writer / Sérialise un enregistrement vers l'écrivain donné
func (s *ExportService) Export(ctx context.Context, entity string, id int64, w io.Writer) error {
	exporter, ok := s.exporters[entity]
	if !ok {
		return fmt.Errorf("unknown export entity: %q", entity)
	}
	return exporter(ctx, id, w)
}
