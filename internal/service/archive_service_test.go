package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Olprog59/go-carehome/internal/config"
	"github.com/Olprog59/go-carehome/internal/domain"
	"github.com/Olprog59/go-carehome/internal/ports"
	"github.com/Olprog59/go-carehome/internal/repository"
	"github.com/Olprog59/go-carehome/internal/repository/db"
	_ "github.com/mutecomm/go-sqlcipher/v4"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// Every pooled connection gets its own :memory: database, so the
	// schema and pragmas below must stay on a single connection.
	database.SetMaxOpenConns(1)

	if _, err := database.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	// Create tables matching the real migrations
	schema := `
	CREATE TABLE admin (
		aid INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL UNIQUE,
		surname TEXT NOT NULL,
		password_hash TEXT NOT NULL
	);

	CREATE TABLE nurse (
		nid INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL UNIQUE,
		surname TEXT NOT NULL,
		phone_number TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL
	);

	CREATE TABLE patient (
		pid INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		surname TEXT NOT NULL,
		date_of_birth TEXT NOT NULL,
		care_level TEXT NOT NULL,
		room_number TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		delete_date TEXT
	);

	CREATE TABLE treatment (
		tid INTEGER PRIMARY KEY AUTOINCREMENT,
		pid INTEGER NOT NULL REFERENCES patient (pid),
		treatment_date TEXT NOT NULL,
		begin_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		description TEXT NOT NULL,
		remark TEXT NOT NULL DEFAULT '',
		status INTEGER NOT NULL DEFAULT 0,
		delete_date TEXT,
		comment TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE archive_patient (
		pid INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL,
		surname TEXT NOT NULL,
		date_of_birth TEXT NOT NULL,
		care_level TEXT NOT NULL,
		room_number TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 1,
		delete_date TEXT NOT NULL,
		outcome TEXT NOT NULL
	);

	CREATE TABLE archive_treatment (
		tid INTEGER PRIMARY KEY,
		pid INTEGER NOT NULL,
		treatment_date TEXT NOT NULL,
		begin_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		description TEXT NOT NULL,
		remark TEXT NOT NULL DEFAULT '',
		status INTEGER NOT NULL DEFAULT 1,
		delete_date TEXT NOT NULL,
		comment TEXT NOT NULL DEFAULT ''
	);
	`

	if _, err := database.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return database
}

// recordingMetrics counts metric calls for assertions.
type recordingMetrics struct {
	archivals map[string]int // entity/status -> count
	sweeps    int
	purged    int64
	logins    map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		archivals: make(map[string]int),
		logins:    make(map[string]int),
	}
}

func (m *recordingMetrics) RecordArchival(entity, status string) {
	m.archivals[entity+"/"+status]++
}

func (m *recordingMetrics) RecordSweep(purged int64) {
	m.sweeps++
	m.purged += purged
}

func (m *recordingMetrics) RecordLoginAttempt(status string) {
	m.logins[status]++
}

type archiveFixture struct {
	db                 *sql.DB
	patients           ports.PatientRepository
	treatments         ports.TreatmentRepository
	archivedPatients   ports.ArchivePatientRepository
	archivedTreatments ports.ArchiveTreatmentRepository
	metrics            *recordingMetrics
	svc                *ArchiveService
}

func setupArchiveService(t *testing.T) *archiveFixture {
	t.Helper()
	database := setupTestDB(t)
	t.Cleanup(func() { database.Close() })

	f := &archiveFixture{
		db:                 database,
		patients:           repository.NewSQLitePatient(database),
		treatments:         repository.NewSQLiteTreatment(database),
		archivedPatients:   repository.NewSQLiteArchivePatient(database),
		archivedTreatments: repository.NewSQLiteArchiveTreatment(database),
		metrics:            newRecordingMetrics(),
	}
	f.svc = NewArchiveService(
		f.patients, f.treatments, f.archivedPatients, f.archivedTreatments,
		database, f.metrics,
	)
	// Pin the clock so sweep behavior is deterministic
	f.svc.now = func() time.Time {
		return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	}
	return f
}

func (f *archiveFixture) createPatient(t *testing.T) int64 {
	t.Helper()
	dob, _ := domain.ParseDate("1945-03-12")
	patient := &domain.Patient{
		Person:      domain.Person{FirstName: "Anna", Surname: "Muster"},
		DateOfBirth: dob,
		CareLevel:   "3",
		RoomNumber:  "204",
	}
	if err := f.patients.Create(context.Background(), patient); err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}
	all, err := f.patients.ReadAll(context.Background())
	if err != nil || len(all) == 0 {
		t.Fatalf("Failed to read back patient: %v", err)
	}
	return all[len(all)-1].ID
}

func (f *archiveFixture) createTreatment(t *testing.T, pid int64, date string) int64 {
	t.Helper()
	day, _ := domain.ParseDate(date)
	begin, _ := domain.ParseClock("09:00")
	end, _ := domain.ParseClock("09:45")
	treatment := &domain.Treatment{
		PatientID:   pid,
		Date:        day,
		Begin:       begin,
		End:         end,
		Description: "Wound care",
	}
	if err := f.treatments.Create(context.Background(), treatment); err != nil {
		t.Fatalf("Failed to create treatment: %v", err)
	}
	all, err := f.treatments.ReadAllByPatient(context.Background(), pid)
	if err != nil || len(all) == 0 {
		t.Fatalf("Failed to read back treatment: %v", err)
	}
	return all[len(all)-1].ID
}

func TestArchiveService_ArchivePatient(t *testing.T) {
	f := setupArchiveService(t)
	ctx := context.Background()

	pid := f.createPatient(t)
	f.createTreatment(t, pid, "2024-01-01")
	f.createTreatment(t, pid, "2025-06-15")

	expiry, _ := domain.ParseDate("2030-01-01")
	if err := f.svc.ArchivePatient(ctx, pid, domain.OutcomeDischarged, expiry); err != nil {
		t.Fatalf("Failed to archive patient: %v", err)
	}

	// The live record is gone
	if _, err := f.patients.Read(ctx, pid); !errors.Is(err, db.ErrNoRecord) {
		t.Errorf("Expected live patient to be removed, got %v", err)
	}

	// The archived copy keeps the original id and carries outcome and expiry
	archived, err := f.archivedPatients.Read(ctx, pid)
	if err != nil {
		t.Fatalf("Failed to read archived patient: %v", err)
	}
	if !archived.Archived {
		t.Error("Archived patient should carry the archived flag")
	}
	if archived.Outcome != domain.OutcomeDischarged {
		t.Errorf("Expected outcome 'discharged', got '%s'", archived.Outcome)
	}
	if archived.DeleteDate == nil || domain.FormatDate(*archived.DeleteDate) != "2030-01-01" {
		t.Error("Expected retention expiry 2030-01-01")
	}

	// The patient's live treatments moved along in the same transaction
	live, _ := f.treatments.ReadAllByPatient(ctx, pid)
	if len(live) != 0 {
		t.Errorf("Expected no live treatments left, got %d", len(live))
	}
	moved, err := f.svc.ArchivedTreatmentsOfPatient(ctx, pid)
	if err != nil {
		t.Fatalf("Failed to read archived treatments: %v", err)
	}
	if len(moved) != 2 {
		t.Fatalf("Expected 2 archived treatments, got %d", len(moved))
	}
	// Each treatment got its own default expiry, ten years after its date
	if domain.FormatDate(*moved[0].DeleteDate) != "2034-01-01" {
		t.Errorf("Expected treatment expiry 2034-01-01, got %s", domain.FormatDate(*moved[0].DeleteDate))
	}
	if domain.FormatDate(*moved[1].DeleteDate) != "2035-06-15" {
		t.Errorf("Expected treatment expiry 2035-06-15, got %s", domain.FormatDate(*moved[1].DeleteDate))
	}

	if f.metrics.archivals["patient/success"] != 1 {
		t.Errorf("Expected one successful patient archival metric, got %d", f.metrics.archivals["patient/success"])
	}
}

func TestArchiveService_ArchivePatient_Missing(t *testing.T) {
	f := setupArchiveService(t)

	expiry, _ := domain.ParseDate("2030-01-01")
	err := f.svc.ArchivePatient(context.Background(), 999, domain.OutcomeDeceased, expiry)
	if !errors.Is(err, db.ErrNoRecord) {
		t.Errorf("Expected ErrNoRecord, got %v", err)
	}
}

func TestArchiveService_ArchivePatient_RollsBackOnConflict(t *testing.T) {
	f := setupArchiveService(t)
	ctx := context.Background()

	pid := f.createPatient(t)

	// A stale archive row with the same id makes the insert fail
	expiry, _ := domain.ParseDate("2030-01-01")
	stale, _ := f.patients.Read(ctx, pid)
	conflict := *stale
	conflict.Archived = true
	conflict.Outcome = domain.OutcomeDeceased
	conflict.DeleteDate = &expiry
	if err := f.archivedPatients.Create(ctx, &conflict); err != nil {
		t.Fatalf("Failed to plant conflicting archive row: %v", err)
	}

	err := f.svc.ArchivePatient(ctx, pid, domain.OutcomeDischarged, expiry)
	if !errors.Is(err, db.ErrConstraint) {
		t.Fatalf("Expected constraint error, got %v", err)
	}

	// The whole transaction rolled back: the live record is untouched
	if _, err := f.patients.Read(ctx, pid); err != nil {
		t.Errorf("Live patient should survive a failed archival: %v", err)
	}
}

func TestArchiveService_ArchiveTreatment(t *testing.T) {
	f := setupArchiveService(t)
	ctx := context.Background()

	pid := f.createPatient(t)
	tid := f.createTreatment(t, pid, "2024-01-01")

	if err := f.svc.ArchiveTreatment(ctx, tid, "episode closed", nil); err != nil {
		t.Fatalf("Failed to archive treatment: %v", err)
	}

	if _, err := f.treatments.Read(ctx, tid); !errors.Is(err, db.ErrNoRecord) {
		t.Errorf("Expected live treatment to be removed, got %v", err)
	}

	archived, err := f.svc.ArchivedTreatmentsOfPatient(ctx, pid)
	if err != nil || len(archived) != 1 {
		t.Fatalf("Expected 1 archived treatment, got %d (%v)", len(archived), err)
	}

	got := archived[0]
	if got.ID != tid {
		t.Errorf("Expected preserved id %d, got %d", tid, got.ID)
	}
	if got.Comment != "episode closed" {
		t.Errorf("Expected closing comment, got '%s'", got.Comment)
	}
	// Default retention: treatment date plus ten years
	if got.DeleteDate == nil || domain.FormatDate(*got.DeleteDate) != "2034-01-01" {
		t.Error("Expected default expiry 2034-01-01")
	}

	if f.metrics.archivals["treatment/success"] != 1 {
		t.Error("Expected one successful treatment archival metric")
	}
}

func TestArchiveService_ArchiveTreatment_ExpiryOverride(t *testing.T) {
	f := setupArchiveService(t)
	ctx := context.Background()

	pid := f.createPatient(t)
	tid := f.createTreatment(t, pid, "2024-01-01")

	override, _ := domain.ParseDate("2027-12-31")
	if err := f.svc.ArchiveTreatment(ctx, tid, "", &override); err != nil {
		t.Fatalf("Failed to archive treatment: %v", err)
	}

	archived, _ := f.svc.ArchivedTreatmentsOfPatient(ctx, pid)
	if len(archived) != 1 {
		t.Fatalf("Expected 1 archived treatment, got %d", len(archived))
	}
	if domain.FormatDate(*archived[0].DeleteDate) != "2027-12-31" {
		t.Errorf("Expected overridden expiry 2027-12-31, got %s", domain.FormatDate(*archived[0].DeleteDate))
	}
}

func TestArchiveService_ArchiveTreatment_CancelledContext(t *testing.T) {
	f := setupArchiveService(t)

	pid := f.createPatient(t)
	tid := f.createTreatment(t, pid, "2024-01-01")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.svc.ArchiveTreatment(ctx, tid, "episode closed", nil); err == nil {
		t.Fatal("Expected archival with a cancelled context to fail")
	}

	// Nothing moved: the live row survives and the archive stays empty
	if _, err := f.treatments.Read(context.Background(), tid); err != nil {
		t.Errorf("Live treatment should survive a cancelled archival: %v", err)
	}
	archived, err := f.svc.ArchivedTreatmentsOfPatient(context.Background(), pid)
	if err != nil {
		t.Fatalf("Failed to read archived treatments: %v", err)
	}
	if len(archived) != 0 {
		t.Errorf("Expected no archived treatments, got %d", len(archived))
	}
}

func TestArchiveService_Sweep(t *testing.T) {
	f := setupArchiveService(t)
	ctx := context.Background()

	// Plant archive rows around the pinned clock (2026-08-31)
	plant := func(id int64, expiry string) {
		dob, _ := domain.ParseDate("1945-03-12")
		date, _ := domain.ParseDate(expiry)
		p := &domain.Patient{
			Person:      domain.Person{FirstName: "Anna", Surname: "Muster"},
			ID:          id,
			DateOfBirth: dob,
			CareLevel:   "3",
			RoomNumber:  "204",
			Archived:    true,
			DeleteDate:  &date,
			Outcome:     domain.OutcomeDischarged,
		}
		if err := f.archivedPatients.Create(ctx, p); err != nil {
			t.Fatalf("Failed to plant archive row: %v", err)
		}
	}
	plant(1, "2020-01-01") // long overdue
	plant(2, "2026-08-31") // due today
	plant(3, "2026-09-01") // due tomorrow, must survive

	purged, err := f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if purged != 2 {
		t.Errorf("Expected 2 purged rows, got %d", purged)
	}

	if _, err := f.archivedPatients.Read(ctx, 3); err != nil {
		t.Errorf("Row expiring tomorrow should survive: %v", err)
	}

	// Running again purges nothing
	purged, err = f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Second sweep failed: %v", err)
	}
	if purged != 0 {
		t.Errorf("Expected idempotent sweep, got %d purged rows", purged)
	}

	if f.metrics.sweeps != 2 || f.metrics.purged != 2 {
		t.Errorf("Expected 2 sweep metrics totaling 2 rows, got %d/%d", f.metrics.sweeps, f.metrics.purged)
	}
}

// testConfig returns a config good enough for the auth and password services.
func testConfig() *config.Config {
	return &config.Config{
		Environment: "development",
		Security: config.SecurityConfig{
			BcryptCost: 4, // MinCost keeps the tests fast
			LoginRPS:   100,
			LoginBurst: 100,
		},
	}
}
