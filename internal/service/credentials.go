package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"devport-api/internal/domain"
	"devport-api/internal/repository"
)

// CredentialStore hashea y verifica passwords sobre el UserRepository.
type CredentialStore struct {
	users repository.UserRepository
	cost  int
	now   func() time.Time
}

func NewCredentialStore(users repository.UserRepository, cost int) *CredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialStore{
		users: users,
		cost:  cost,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type CreateUserInput struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
}

// Create valida, hace el chequeo previo de existencia y persiste la identidad.
// Si el store rechaza por unicidad el resultado es ErrUserExists, igual que el chequeo previo.
func (s *CredentialStore) Create(ctx context.Context, input CreateUserInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrNotConfigured
	}

	username := normalizeUsername(input.Username)
	emailAddr := normalizeEmail(input.Email)
	displayName := strings.TrimSpace(input.DisplayName)

	if displayName == "" {
		return domain.User{}, newValidationError("name", "Please provide a name")
	}
	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}
	if !strictEmailPattern.MatchString(emailAddr) {
		return domain.User{}, newValidationError("email", "Please provide a valid email")
	}
	if err := validatePassword("password", input.Password); err != nil {
		return domain.User{}, err
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, emailAddr, username)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, ErrUserExists
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        emailAddr,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}
	return user, nil
}

// VerifyPassword compara el password en texto plano contra el hash guardado.
func (s *CredentialStore) VerifyPassword(user domain.User, password string) bool {
	if user.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// SetPassword valida y persiste un nuevo password para el usuario.
func (s *CredentialStore) SetPassword(ctx context.Context, user domain.User, password string) error {
	if err := validatePassword("password", password); err != nil {
		return err
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.translateNotFound(s.users.UpdatePassword(ctx, user.ID, hash))
}

// ResetPassword es SetPassword mas la limpieza de los campos de reset en la misma escritura.
func (s *CredentialStore) ResetPassword(ctx context.Context, user domain.User, password string) error {
	if err := validatePassword("password", password); err != nil {
		return err
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.translateNotFound(s.users.ResetPassword(ctx, user.ID, hash))
}

func (s *CredentialStore) hash(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func (s *CredentialStore) translateNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
