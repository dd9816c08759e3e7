package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"devport-api/internal/domain"
	"devport-api/internal/repository"
)

// UserService coordina reglas de negocio para cuentas de usuario.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	creds  *CredentialStore
	otp    *OTPService
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, creds *CredentialStore, otp *OTPService) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger: logger,
		users:  users,
		creds:  creds,
		otp:    otp,
	}
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// Register crea la cuenta si el email tiene un OTP pendiente vigente y luego consume ese OTP.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.creds == nil || s.otp == nil {
		return domain.User{}, ErrNotConfigured
	}

	emailAddr := normalizeEmail(input.Email)
	if err := s.otp.RequireVerified(ctx, emailAddr); err != nil {
		return domain.User{}, err
	}

	user, err := s.creds.Create(ctx, CreateUserInput{
		Username:    input.Username,
		DisplayName: input.Name,
		Email:       emailAddr,
		Password:    input.Password,
	})
	if err != nil {
		return domain.User{}, err
	}

	// La cuenta ya existe; un fallo al borrar el OTP no revierte el registro.
	if err := s.otp.Finalize(ctx, emailAddr); err != nil {
		s.logger.Warn("delete pending verification failed", zap.Error(err), zap.String("email", emailAddr))
	}
	return user, nil
}

// Authenticate acepta email o username como identificador.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (domain.User, error) {
	if s.users == nil || s.creds == nil {
		return domain.User{}, ErrNotConfigured
	}

	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !s.creds.VerifyPassword(user, password) {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpdatePassword cambia el password del usuario autenticado tras verificar el actual.
func (s *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if s.users == nil || s.creds == nil {
		return ErrNotConfigured
	}
	if currentPassword == "" || newPassword == "" {
		return newValidationError("password", "Please provide both current and new passwords.")
	}
	if len(newPassword) < minPasswordLength {
		return newValidationError("newPassword", "New password must be at least 6 characters long.")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.creds.VerifyPassword(user, currentPassword) {
		return ErrIncorrectPassword
	}
	return s.creds.SetPassword(ctx, user, newPassword)
}

// DeleteAccount elimina la identidad y los documentos que le pertenecen.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if s.users == nil {
		return ErrNotConfigured
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// GetUser devuelve el registro completo; los handlers deben usar Public antes de serializar.
func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrNotConfigured
	}
	if strings.TrimSpace(userID) == "" {
		return domain.User{}, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}
