package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"devport-api/internal/domain"
	"devport-api/internal/email"
	"devport-api/internal/repository"
)

const defaultOTPTTL = 5 * time.Minute

// OTPService emite y verifica los codigos que prueban la propiedad de un email antes del registro.
type OTPService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	pending repository.PendingVerificationRepository
	sender  email.Sender
	ttl     time.Duration
	now     func() time.Time
}

func NewOTPService(
	logger *zap.Logger,
	users repository.UserRepository,
	pending repository.PendingVerificationRepository,
	sender email.Sender,
	ttl time.Duration,
) *OTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultOTPTTL
	}
	return &OTPService{
		logger:  logger,
		users:   users,
		pending: pending,
		sender:  sender,
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Issue genera un codigo nuevo para el email, reemplazando cualquier codigo previo, y lo envia.
func (s *OTPService) Issue(ctx context.Context, emailAddr, username string) error {
	if s.users == nil || s.pending == nil {
		return ErrNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	if !emailPattern.MatchString(emailAddr) {
		return ErrInvalidEmail
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if username = normalizeUsername(username); username != "" {
		if _, err := s.users.GetByUsername(ctx, username); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	code, err := generateNumericCode()
	if err != nil {
		return err
	}
	now := s.now()
	record := domain.PendingVerification{
		Email:     emailAddr,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.pending.Upsert(ctx, record); err != nil {
		return err
	}

	if s.sender == nil {
		return ErrEmailSendFailure
	}
	subject, body := email.VerificationOTPMessage(code, s.ttl)
	if err := s.sender.Send(ctx, emailAddr, subject, body); err != nil {
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", emailAddr))
		return ErrEmailSendFailure
	}
	return nil
}

// Verify comprueba el codigo sin consumirlo: sigue valido hasta vencer o hasta completar el registro.
func (s *OTPService) Verify(ctx context.Context, emailAddr, code string) error {
	record, err := s.lookup(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPNotFound
		}
		return err
	}
	if record.Expired(s.now()) {
		return ErrOTPExpired
	}
	if record.Code != code {
		return ErrOTPInvalid
	}
	return nil
}

// RequireVerified exige un registro pendiente vigente; se re-chequea en cada registro.
func (s *OTPService) RequireVerified(ctx context.Context, emailAddr string) error {
	record, err := s.lookup(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmailNotVerified
		}
		return err
	}
	if record.Expired(s.now()) {
		return ErrOTPExpired
	}
	return nil
}

// Finalize elimina el registro pendiente una vez creada la identidad.
func (s *OTPService) Finalize(ctx context.Context, emailAddr string) error {
	if s.pending == nil {
		return ErrNotConfigured
	}
	return s.pending.Delete(ctx, normalizeEmail(emailAddr))
}

func (s *OTPService) lookup(ctx context.Context, emailAddr string) (domain.PendingVerification, error) {
	if s.pending == nil {
		return domain.PendingVerification{}, ErrNotConfigured
	}
	return s.pending.GetByEmail(ctx, normalizeEmail(emailAddr))
}
