package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"devport-api/internal/domain"
)

type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisPendingVerificationRepository guarda cada OTP pendiente en una clave con TTL.
// La clave vive grace mas alla del vencimiento para poder distinguir "vencido" de "inexistente".
type RedisPendingVerificationRepository struct {
	client redisKV
	prefix string
	grace  time.Duration
	now    func() time.Time
}

func NewRedisPendingVerificationRepository(client *redis.Client, grace time.Duration) *RedisPendingVerificationRepository {
	if grace < 0 {
		grace = 0
	}
	return &RedisPendingVerificationRepository{
		client: client,
		prefix: "otp:pending:",
		grace:  grace,
		now:    time.Now,
	}
}

type redisPendingVerification struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *RedisPendingVerificationRepository) Upsert(ctx context.Context, v domain.PendingVerification) error {
	payload, err := json.Marshal(redisPendingVerification{
		Code:      v.Code,
		ExpiresAt: v.ExpiresAt.UTC(),
		CreatedAt: v.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal pending verification: %w", err)
	}
	ttl := v.ExpiresAt.Sub(r.now()) + r.grace
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := r.client.Set(ctx, r.key(v.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("upsert pending verification: %w", err)
	}
	return nil
}

func (r *RedisPendingVerificationRepository) GetByEmail(ctx context.Context, email string) (domain.PendingVerification, error) {
	raw, err := r.client.Get(ctx, r.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PendingVerification{}, fmt.Errorf("get pending verification: %w", ErrNotFound)
		}
		return domain.PendingVerification{}, fmt.Errorf("get pending verification: %w", err)
	}
	var stored redisPendingVerification
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.PendingVerification{}, fmt.Errorf("unmarshal pending verification: %w", err)
	}
	return domain.PendingVerification{
		Email:     strings.TrimSpace(email),
		Code:      stored.Code,
		ExpiresAt: stored.ExpiresAt,
		CreatedAt: stored.CreatedAt,
	}, nil
}

func (r *RedisPendingVerificationRepository) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.key(email)).Err(); err != nil {
		return fmt.Errorf("delete pending verification: %w", err)
	}
	return nil
}

func (r *RedisPendingVerificationRepository) key(email string) string {
	return r.prefix + strings.ToLower(strings.TrimSpace(email))
}
