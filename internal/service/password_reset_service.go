package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"devport-api/internal/email"
	"devport-api/internal/repository"
)

const (
	defaultResetCodeTTL = 10 * time.Minute
	cleanupTimeout      = 5 * time.Second
)

// PasswordResetService maneja el ciclo de vida del codigo de reset de password.
type PasswordResetService struct {
	logger *zap.Logger
	users  repository.UserRepository
	creds  *CredentialStore
	sender email.Sender
	ttl    time.Duration
	now    func() time.Time
}

func NewPasswordResetService(
	logger *zap.Logger,
	users repository.UserRepository,
	creds *CredentialStore,
	sender email.Sender,
	ttl time.Duration,
) *PasswordResetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultResetCodeTTL
	}
	return &PasswordResetService{
		logger: logger,
		users:  users,
		creds:  creds,
		sender: sender,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RequestReset emite un codigo para el email si existe la cuenta. Un email desconocido
// devuelve nil sin enviar nada, para no revelar si la cuenta existe.
func (s *PasswordResetService) RequestReset(ctx context.Context, emailAddr string) error {
	if s.users == nil {
		return ErrNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return nil
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.HasPendingReset(s.now()) {
		s.logger.Info("replacing active password reset code", zap.String("user_id", user.ID))
	}

	code, err := generateNumericCode()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.ttl)
	if err := s.users.SetResetCode(ctx, user.ID, lookupHash(code), expiresAt); err != nil {
		s.clearResetCode(ctx, user.ID)
		return err
	}

	if s.sender == nil {
		s.clearResetCode(ctx, user.ID)
		return ErrEmailSendFailure
	}
	subject, body := email.PasswordResetMessage(code, s.ttl)
	if err := s.sender.Send(ctx, user.Email, subject, body); err != nil {
		s.logger.Warn("send password reset code failed", zap.Error(err), zap.String("user_id", user.ID))
		s.clearResetCode(ctx, user.ID)
		return ErrEmailSendFailure
	}
	return nil
}

// CompleteReset consume el codigo: email, digest y vigencia se resuelven en una sola busqueda.
// Cualquier falla de coincidencia devuelve ErrResetInvalid sin distinguir la causa.
func (s *PasswordResetService) CompleteReset(ctx context.Context, emailAddr, code, newPassword string) error {
	if s.users == nil || s.creds == nil {
		return ErrNotConfigured
	}
	if err := validatePassword("password", newPassword); err != nil {
		return err
	}

	code = strings.TrimSpace(code)
	if !isValidOTPCode(code) {
		return ErrResetInvalid
	}

	user, err := s.users.GetByResetCode(ctx, normalizeEmail(emailAddr), lookupHash(code), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetInvalid
		}
		return err
	}

	if err := s.creds.ResetPassword(ctx, user, newPassword); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrResetInvalid
		}
		return err
	}
	return nil
}

// clearResetCode corre con un contexto desacoplado para ejecutarse aun si el request fue cancelado.
func (s *PasswordResetService) clearResetCode(ctx context.Context, userID string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.users.ClearResetCode(cleanupCtx, userID); err != nil {
		s.logger.Error("clear reset code failed", zap.Error(err), zap.String("user_id", userID))
	}
}
