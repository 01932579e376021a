package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Olprog59/go-carehome/internal/app"
	"github.com/Olprog59/go-carehome/internal/config"
	"github.com/Olprog59/go-carehome/internal/domain"
	"github.com/Olprog59/go-carehome/internal/logging"
	"github.com/Olprog59/go-carehome/internal/repository/db"
)

// init configures standard logger flags / Configure les flags du logger standard
func init() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.LstdFlags)
}

// main is the application entry point / Point d'entrée de l'application
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run dispatches to the requested maintenance command / Aiguille vers la commande demandée
func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Configure the logger according to the environment
	closeLogger, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogger()

	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "serve":
		return serve(cfg)
	case "sweep":
		return runSweep(cfg)
	case "export":
		return runExport(cfg, args)
	case "rekey":
		return runRekey(cfg)
	case "staff":
		return runStaff(cfg, args)
	default:
		return fmt.Errorf("unknown command %q (expected serve, sweep, export, rekey or staff)", cmd)
	}
}

// serve runs the store with its background routines / Fait tourner le magasin avec ses routines
func serve(cfg *config.Config) error {
	logStartupInfo(cfg)

	// Initialize container with all dependencies
	container, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	var srv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(container.MetricsRegistry, promhttp.HandlerOpts{}))
		srv = &http.Server{
			Addr:         ":" + cfg.Metrics.Port,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("Metrics listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				serverErr <- err
			}
		}()
	}

	// Wait for shutdown signal or metrics server error
	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	log.Println("Stopped successfully")
	return nil
}

// runSweep runs one retention sweep and exits / Exécute une passe de rétention puis quitte
func runSweep(cfg *config.Config) error {
	container, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	purged, err := container.ArchiveSvc.Sweep(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("retention sweep purged %d archived record(s)\n", purged)
	return nil
}

// runExport writes one record as JSON to the export directory.
// Écrit un enregistrement en JSON dans le répertoire d'export.
func runExport(cfg *config.Config, args []string) error {
	container, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	if len(args) != 2 {
		return fmt.Errorf("usage: carehome export <%s> <id>",
			strings.Join(container.ExportSvc.Entities(), "|"))
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[1], err)
	}

	path, err := container.ExportSvc.ExportToFile(context.Background(), args[0], id)
	if err != nil {
		return err
	}
	fmt.Printf("exported %s %d to %s\n", args[0], id, path)
	return nil
}

// runRekey re-encrypts the store under a new key / Re-chiffre le magasin sous une nouvelle clé
// The new key is read from DB_ENCRYPTION_KEY_NEW so it never appears in argv.
func runRekey(cfg *config.Config) error {
	newKey := os.Getenv("DB_ENCRYPTION_KEY_NEW")
	if strings.TrimSpace(newKey) == "" {
		return fmt.Errorf("DB_ENCRYPTION_KEY_NEW is not set")
	}

	container, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	if err := db.Rekey(container.DB, newKey); err != nil {
		return err
	}
	fmt.Println("store re-encrypted; update DB_ENCRYPTION_KEY before the next start")
	return nil
}

// runStaff creates login accounts / Crée des comptes de connexion
func runStaff(cfg *config.Config, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: carehome staff <add-nurse|add-admin> <first-name> <surname> [phone]")
	}

	container, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	password, err := readPassword()
	if err != nil {
		return err
	}
	hash, err := container.PasswordSvc.Hash(password)
	if err != nil {
		return err
	}

	person := domain.Person{FirstName: args[1], Surname: args[2]}
	ctx := context.Background()

	switch args[0] {
	case "add-nurse":
		nurse := &domain.Nurse{Person: person, PasswordHash: hash}
		if len(args) > 3 {
			nurse.PhoneNumber = args[3]
		}
		if err := container.Nurses.Create(ctx, nurse); err != nil {
			return err
		}
	case "add-admin":
		if err := container.Admins.Create(ctx, &domain.Admin{Person: person, PasswordHash: hash}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown staff command %q (expected add-nurse or add-admin)", args[0])
	}

	fmt.Printf("created %s account for %s\n", args[0][4:], person.FullName())
	return nil
}

// readPassword takes the password from the environment or from stdin.
// Prend le mot de passe depuis l'environnement ou l'entrée standard.
func readPassword() (string, error) {
	if pw := os.Getenv("STAFF_PASSWORD"); pw != "" {
		return pw, nil
	}
	fmt.Fprint(os.Stderr, "password: ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no password provided")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// logStartupInfo displays startup information / Affiche les informations de démarrage
func logStartupInfo(conf *config.Config) {
	slog.Info("🚀 Starting application",
		"environment", conf.Environment,
		"database", conf.Database.DSN,
	)

	slog.Info("🗄️  Retention policy",
		"sweep_interval", conf.Retention.SweepInterval,
	)

	if conf.Backup.Enabled {
		slog.Info("💾 Automatic backups enabled",
			"interval", conf.Backup.Interval,
			"retention_days", conf.Backup.RetentionDays,
		)
	} else {
		slog.Warn("⚠️  Automatic backups are DISABLED")
	}
}

// setupLogger configures structured logger / Configure le logger structuré
func setupLogger(conf *config.Config) (func(), error) {
	// Parse log level from config
	var level slog.Level
	switch strings.ToLower(conf.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create console handler
	var consoleHandler slog.Handler
	if strings.ToLower(conf.Logging.Format) == "json" {
		consoleHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: conf.IsProduction(),
		})
	} else {
		consoleHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	// If the audit trail is enabled, tee every record into the append-only file
	if conf.Logging.AuditEnabled {
		auditHandler, err := logging.NewAuditHandler(
			conf.Logging.AuditPath,
			conf.Logging.AuditBatchSize,
			true,
			level,
		)
		if err != nil {
			return nil, err
		}

		slog.SetDefault(slog.New(logging.NewTeeHandler(consoleHandler, auditHandler)))

		slog.Info("📊 Logging configured",
			"level", level.String(),
			"format", conf.Logging.Format,
			"audit_enabled", true,
			"audit_path", conf.Logging.AuditPath,
		)
		return func() { _ = auditHandler.Close() }, nil
	}

	// Console only
	slog.SetDefault(slog.New(consoleHandler))

	slog.Info("📊 Logging configured",
		"level", level.String(),
		"format", conf.Logging.Format,
		"audit_enabled", false,
	)
	return func() {}, nil
}
