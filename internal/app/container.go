package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/prometheus/client_golang/prometheus"
	_ "github.com/golang-migrate/migrate/v4/source/file" // Required for file-based migrations
	_ "github.com/mutecomm/go-sqlcipher/v4"              // SQLCipher driver

	"github.com/Olprog59/go-carehome/internal/config"
	"github.com/Olprog59/go-carehome/internal/metrics"
	"github.com/Olprog59/go-carehome/internal/ports"
	"github.com/Olprog59/go-carehome/internal/repository"
	"github.com/Olprog59/go-carehome/internal/repository/db"
	"github.com/Olprog59/go-carehome/internal/service"
)

// Container holds application dependencies / Contient les dépendances de l'application
// It owns the one process-wide database handle: constructed here at startup,
// handed to every repository, closed exactly once at shutdown.
type Container struct {
	DB                 *sql.DB
	Patients           ports.PatientRepository
	Nurses             ports.NurseRepository
	Admins             ports.AdminRepository
	Treatments         ports.TreatmentRepository
	ArchivedPatients   ports.ArchivePatientRepository
	ArchivedTreatments ports.ArchiveTreatmentRepository
	ArchiveSvc         *service.ArchiveService
	AuthSvc            *service.AuthService
	PasswordSvc        *service.PasswordService
	ExportSvc          *service.ExportService
	Config             *config.Config
	Metrics            *metrics.Metrics
	MetricsRegistry    *prometheus.Registry
	ctxCancel          context.CancelFunc
}

// NewContainer initializes application container / Initialise le conteneur de l'application
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{}
	c.Config = cfg

	// Initialize metrics first (no dependencies). The container owns its
	// registry so repeated constructions never clash on registration.
	c.MetricsRegistry = prometheus.NewRegistry()
	c.Metrics = metrics.NewMetrics(c.MetricsRegistry)

	if err := c.initDatabase(); err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}

	if err := c.runMigrations(); err != nil {
		c.Close() // Ensure database connection is closed on migration failure
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	if err := c.initRepositories(); err != nil {
		c.Close()
		return nil, fmt.Errorf("repository init: %w", err)
	}

	if err := c.initServices(); err != nil {
		c.Close()
		return nil, fmt.Errorf("service init: %w", err)
	}

	// Update database connection metrics
	c.updateDatabaseMetrics()

	return c, nil
}

// initDatabase initializes database connection / Initialise la connexion à la base de données
func (c *Container) initDatabase() error {
	dbType := db.DatabaseType(strings.ToLower(c.Config.Database.Type))
	if dbType == "" {
		dbType = db.SQLite
	}

	dbConfig := db.DatabaseConfig{
		Type:          dbType,
		DSN:           c.Config.Database.DSN,
		EncryptionKey: c.Config.Database.EncryptionKey,
		MaxOpenConns:  c.Config.Database.MaxOpenConns,
		MaxIdleConns:  c.Config.Database.MaxIdleConns,
	}

	// Use Factory Pattern to create appropriate initializer
	initializer := db.NewDatabaseInitializer(dbType)

	database, err := initializer.Initialize(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize %s database: %w", dbType, err)
	}

	c.DB = database
	return nil
}

// runMigrations applies database migrations / Applique les migrations de base de données
func (c *Container) runMigrations() error {
	dbType := db.DatabaseType(strings.ToLower(c.Config.Database.Type))
	if dbType == "" {
		dbType = db.SQLite
	}

	// Create migration driver registry (Dependency Injection)
	registry := db.NewMigrationDriverRegistry()

	driverFactory, err := registry.GetFactory(dbType)
	if err != nil {
		return err
	}

	driver, err := driverFactory.CreateDriver(c.DB)
	if err != nil {
		return fmt.Errorf("could not create %s migration driver: %w", dbType, err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+c.Config.Database.MigrationsPath,
		driverFactory.DriverName(),
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	log.Printf("Applying %s database migrations...", dbType)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Database migrations applied successfully.")
	return nil
}

// initRepositories initializes repositories / Initialise les repositories
func (c *Container) initRepositories() error {
	// Use Adapter Pattern for clean database abstraction
	adapter := repository.NewAdapter(c.DB, c.Config.Database.Type)

	c.Patients = adapter.PatientRepository()
	c.Nurses = adapter.NurseRepository()
	c.Admins = adapter.AdminRepository()
	c.Treatments = adapter.TreatmentRepository()
	c.ArchivedPatients = adapter.ArchivePatientRepository()
	c.ArchivedTreatments = adapter.ArchiveTreatmentRepository()

	log.Printf("Repositories initialized for %s database", c.Config.Database.Type)
	return nil
}

// initServices initializes application services / Initialise les services applicatifs
func (c *Container) initServices() error {
	var err error
	c.PasswordSvc, err = service.NewPasswordService(c.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize password service: %w", err)
	}

	c.AuthSvc = service.NewAuthService(c.Admins, c.Nurses, c.Config, c.Metrics)
	c.ArchiveSvc = service.NewArchiveService(
		c.Patients, c.Treatments, c.ArchivedPatients, c.ArchivedTreatments, c.DB, c.Metrics,
	)
	c.ExportSvc = service.NewExportService(
		c.Config.Export.Path,
		c.Patients, c.Nurses, c.Admins, c.Treatments, c.ArchivedPatients, c.ArchivedTreatments,
	)

	// Periodic retention sweep + clean stop
	ctx, cancel := context.WithCancel(context.Background())
	c.ctxCancel = cancel

	go func() {
		c.Metrics.SetBackgroundTaskStatus("retention_sweep", true)
		ticker := time.NewTicker(c.Config.Retention.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := c.ArchiveSvc.Sweep(context.Background()); err != nil {
					log.Printf("retention sweep failed: %v", err)
				}
			case <-ctx.Done():
				c.Metrics.SetBackgroundTaskStatus("retention_sweep", false)
				log.Println("retention sweep goroutine stopped")
				return
			}
		}
	}()

	// Start automatic backup goroutine if enabled / Démarre la goroutine de backup automatique si activée
	if c.Config.Backup.Enabled {
		c.startBackupRoutine(ctx)
	}

	return nil
}

// updateDatabaseMetrics updates database metrics / Met à jour les métriques de la BD
func (c *Container) updateDatabaseMetrics() {
	stats := c.DB.Stats()
	c.Metrics.UpdateDatabaseConnections(stats.OpenConnections)
}

// startBackupRoutine starts automatic backup routine / Démarre la routine de backup automatique
func (c *Container) startBackupRoutine(ctx context.Context) {
	go func() {
		c.Metrics.SetBackgroundTaskStatus("database_backup", true)
		ticker := time.NewTicker(c.Config.Backup.Interval)
		defer ticker.Stop()

		log.Printf("Automatic database backup enabled (interval: %s, retention: %d days)",
			c.Config.Backup.Interval, c.Config.Backup.RetentionDays)

		for {
			select {
			case <-ticker.C:
				if err := c.performBackup(); err != nil {
					log.Printf("backup failed: %v", err)
				} else {
					log.Println("database backup completed successfully")
				}
				// Clean old backups after creating new one / Nettoie les anciens backups après création
				if err := c.cleanOldBackups(); err != nil {
					log.Printf("backup cleanup failed: %v", err)
				}
			case <-ctx.Done():
				c.Metrics.SetBackgroundTaskStatus("database_backup", false)
				log.Println("backup goroutine stopped")
				return
			}
		}
	}()
}

// performBackup creates database backup / Crée un backup de la base de données
// VACUUM INTO copies the whole file under the connection's key, so the
// backup stays encrypted with the same key as the live store.
func (c *Container) performBackup() error {
	if err := os.MkdirAll(c.Config.Backup.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Extract database filename from DSN / Extrait le nom du fichier depuis le DSN
	dbName := c.Config.Database.DSN
	if idx := strings.Index(dbName, "?"); idx > 0 {
		dbName = dbName[:idx]
	}
	if dbName == "" || dbName == ":memory:" {
		return fmt.Errorf("cannot backup in-memory database")
	}

	// Generate backup filename with timestamp / Génère le nom du fichier avec horodatage
	timestamp := time.Now().Format("20060102-150405")
	backupFilename := fmt.Sprintf("%s.backup-%s.db", filepath.Base(dbName), timestamp)
	backupPath := filepath.Join(c.Config.Backup.Path, backupFilename)

	// Use VACUUM INTO to create backup (SQLite 3.27.0+) / Utilise VACUUM INTO pour créer le backup
	query := fmt.Sprintf("VACUUM INTO '%s'", backupPath)
	if _, err := c.DB.Exec(query); err != nil {
		return fmt.Errorf("backup execution failed: %w", err)
	}

	log.Printf("Database backup created: %s", backupPath)
	return nil
}

// cleanOldBackups removes old backups / Supprime les anciens backups
func (c *Container) cleanOldBackups() error {
	if c.Config.Backup.RetentionDays <= 0 {
		return nil // No cleanup if retention is 0 or negative / Pas de nettoyage si rétention <= 0
	}

	cutoffTime := time.Now().AddDate(0, 0, -c.Config.Backup.RetentionDays)

	entries, err := os.ReadDir(c.Config.Backup.Path)
	if err != nil {
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	deletedCount := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Only delete .backup-*.db files / Ne supprime que les fichiers .backup-*.db
		if !strings.Contains(entry.Name(), ".backup-") || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Printf("failed to get file info for %s: %v", entry.Name(), err)
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			backupPath := filepath.Join(c.Config.Backup.Path, entry.Name())
			if err := os.Remove(backupPath); err != nil {
				log.Printf("failed to delete old backup %s: %v", entry.Name(), err)
			} else {
				deletedCount++
			}
		}
	}

	if deletedCount > 0 {
		log.Printf("Cleaned up %d old backup(s)", deletedCount)
	}

	return nil
}

// Close performs graceful shutdown / Effectue un arrêt gracieux
func (c *Container) Close() error {
	if c.ctxCancel != nil {
		c.ctxCancel()
	}
	if c.DB != nil {
		log.Println("Closing database...")
		return c.DB.Close()
	}
	return nil
}
