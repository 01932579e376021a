package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/Olprog59/go-carehome/internal/config"
	"github.com/Olprog59/go-carehome/internal/domain"
	"github.com/Olprog59/go-carehome/internal/ports"
	"github.com/Olprog59/go-carehome/internal/repository/db"
)

// AuthMetricsRecorder records auth metrics / Enregistre les métriques d'authentification
type AuthMetricsRecorder interface {
	RecordLoginAttempt(status string)
}

// AuthService handles the authentication lookup / Gère la recherche d'authentification
//
// The first name doubles as the login identifier; admins are checked before
// nurses. Every failure collapses into ErrInvalidCredentials so the caller
// cannot tell an unknown username from a wrong password.
type AuthService struct {
	admins  ports.AdminRepository
	nurses  ports.NurseRepository
	conf    *config.Config
	limiter *rate.Limiter
	metrics AuthMetricsRecorder
}

// dummyHash keeps the bcrypt cost on the unknown-username path so response
// timing does not leak whether the name matched anything.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

// NewAuthService creates authentication service instance / Crée une instance de service d'authentification
func NewAuthService(
	admins ports.AdminRepository,
	nurses ports.NurseRepository,
	conf *config.Config,
	metrics AuthMetricsRecorder,
) *AuthService {
	return &AuthService{
		admins:  admins,
		nurses:  nurses,
		conf:    conf,
		limiter: rate.NewLimiter(rate.Limit(conf.Security.LoginRPS), conf.Security.LoginBurst),
		metrics: metrics,
	}
}

// Login authenticates a staff member by first name and password.
// Authentifie un membre du personnel par prénom et mot de passe.
func (s *AuthService) Login(ctx context.Context, firstName, password string) (*domain.StaffAccount, error) {
	if !s.limiter.Allow() {
		s.metrics.RecordLoginAttempt("throttled")
		return nil, ErrTooManyAttempts
	}

	account, hash, err := s.lookup(ctx, firstName)
	if err != nil {
		if !errors.Is(err, db.ErrNoRecord) {
			// Storage trouble is logged but still reported generically.
			slog.Error("authentication lookup failed", "err", err)
		}
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.metrics.RecordLoginAttempt("failure")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		s.metrics.RecordLoginAttempt("failure")
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLoginAttempt("success")
	slog.Info("staff member authenticated", "id", account.ID, "privileged", account.Privileged)
	return account, nil
}

// lookup resolves a candidate account, admins first / Résout un compte candidat, administrateurs d'abord
func (s *AuthService) lookup(ctx context.Context, firstName string) (*domain.StaffAccount, string, error) {
	admin, err := s.admins.GetByFirstName(ctx, firstName)
	if err == nil {
		return admin.Account(), admin.PasswordHash, nil
	}
	if !errors.Is(err, db.ErrNoRecord) {
		return nil, "", err
	}

	nurse, err := s.nurses.GetByFirstName(ctx, firstName)
	if err != nil {
		return nil, "", err
	}
	return nurse.Account(), nurse.PasswordHash, nil
}
