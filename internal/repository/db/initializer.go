package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"strings"

	_ "github.com/mutecomm/go-sqlcipher/v4" // SQLCipher driver, registers "sqlite3"
)

// DatabaseConfig holds database connection config / Contient la config de connexion BD
type DatabaseConfig struct {
	Type          DatabaseType
	DSN           string
	EncryptionKey string // Symmetric key for the database file, from the environment / Clé symétrique du fichier BD, depuis l'environnement
	MaxOpenConns  int
	MaxIdleConns  int
}

// DatabaseInitializer initializes database connections / Initialise les connexions BD
type DatabaseInitializer interface {
	Initialize(config DatabaseConfig) (*sql.DB, error)
	ConfigureConnection(db *sql.DB, config DatabaseConfig) error
	Type() DatabaseType
}

// InitializerRegistry manages database initializers / Gère les initialiseurs de BD
type InitializerRegistry[T DatabaseInitializer] struct {
	factories map[DatabaseType]func() T
}

// NewInitializerRegistry creates registry / Crée le registre
func NewInitializerRegistry[T DatabaseInitializer]() *InitializerRegistry[T] {
	return &InitializerRegistry[T]{
		factories: make(map[DatabaseType]func() T),
	}
}

// Register registers initializer factory / Enregistre une factory d'initialiseur
func (r *InitializerRegistry[T]) Register(dbType DatabaseType, factory func() T) {
	r.factories[dbType] = factory
}

// Get retrieves initializer / Récupère l'initialiseur
func (r *InitializerRegistry[T]) Get(dbType DatabaseType, fallback func() T) T {
	if factory, exists := r.factories[dbType]; exists {
		return factory()
	}
	return fallback()
}

// initializerRegistry manages database initializers / Gère les initialiseurs
var initializerRegistry = func() *InitializerRegistry[DatabaseInitializer] {
	registry := NewInitializerRegistry[DatabaseInitializer]()
	registry.Register(SQLite, func() DatabaseInitializer { return &sqliteInitializer{} })
	return registry
}()

// NewDatabaseInitializer creates initializer for database type / Crée l'initialiseur pour le type de BD
func NewDatabaseInitializer(dbType DatabaseType) DatabaseInitializer {
	return initializerRegistry.Get(dbType, func() DatabaseInitializer { return &sqliteInitializer{} })
}

// baseInitializer provides common functionality / Fournit les fonctionnalités communes
type baseInitializer struct{}

func (b *baseInitializer) setConnectionPool(db *sql.DB, config DatabaseConfig) {
	maxOpen := config.MaxOpenConns
	if maxOpen == 0 {
		// One writer keeps the UI-driven calls serialized on the file store.
		maxOpen = 1
	}
	maxIdle := config.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
}

// SQLite initializer / Initialiseur SQLite
type sqliteInitializer struct {
	baseInitializer
}

// Initialize opens the encrypted database file. It fails closed: no key,
// no connection; a wrong key or a driver without cipher support surfaces
// as ErrUnavailable before any repository sees the handle.
func (i *sqliteInitializer) Initialize(config DatabaseConfig) (*sql.DB, error) {
	if strings.TrimSpace(config.EncryptionKey) == "" {
		return nil, fmt.Errorf("%w: database encryption key is not set", ErrUnavailable)
	}

	// The key rides in the DSN so every pooled connection is keyed,
	// not just the one a PRAGMA statement happens to land on.
	db, err := sql.Open("sqlite3", keyedDSN(config.DSN, config.EncryptionKey))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open sqlite connection: %v", ErrUnavailable, err)
	}

	if err := verifyEncryption(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := i.ConfigureConnection(db, config); err != nil {
		db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping sqlite: %v", ErrUnavailable, err)
	}

	log.Println("SQLite database connected successfully")
	return db, nil
}

func (i *sqliteInitializer) ConfigureConnection(db *sql.DB, config DatabaseConfig) error {
	i.setConnectionPool(db, config)

	// SQLite-specific PRAGMAs; foreign_keys=ON is load-bearing, the
	// treatment table references patient.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA trusted_schema=OFF;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: failed to execute pragma (%s): %v", pragma, err)
		}
	}

	return nil
}

func (i *sqliteInitializer) Type() DatabaseType {
	return SQLite
}

// keyedDSN appends the cipher key to the connection string.
func keyedDSN(dsn, key string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma_key=" + url.QueryEscape(key)
}

// verifyEncryption proves the handle is actually encrypted before it is
// handed out. Two checks: the driver must report a cipher version (a
// plain SQLite build silently ignores the key pragma, which would leave
// the file unencrypted while everything appears to work), and the schema
// table must decode (a wrong key makes the file read as garbage).
func verifyEncryption(db *sql.DB) error {
	var cipherVersion string
	if err := db.QueryRow("PRAGMA cipher_version;").Scan(&cipherVersion); err != nil || cipherVersion == "" {
		return fmt.Errorf("%w: driver has no cipher support, refusing to run unencrypted", ErrUnavailable)
	}

	if _, err := db.Exec("SELECT count(*) FROM sqlite_master;"); err != nil {
		return fmt.Errorf("%w: encryption key rejected by database file: %v", ErrUnavailable, err)
	}
	return nil
}

// Rekey rotates the encryption key of an already-open database. Refuses
// to run when the driver carries no cipher, otherwise the rotation would
// report success without changing anything.
func Rekey(db *sql.DB, newKey string) error {
	if strings.TrimSpace(newKey) == "" {
		return fmt.Errorf("%w: refusing to rekey with an empty key", ErrUnavailable)
	}
	var cipherVersion string
	if err := db.QueryRow("PRAGMA cipher_version;").Scan(&cipherVersion); err != nil || cipherVersion == "" {
		return fmt.Errorf("%w: driver has no cipher support, refusing to rekey", ErrUnavailable)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA rekey = '%s';", strings.ReplaceAll(newKey, "'", "''"))); err != nil {
		return fmt.Errorf("rekey failed: %w", err)
	}
	log.Println("Database encryption key rotated")
	return nil
}
