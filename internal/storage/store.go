package storage

import "context"

// SessionStore — хранилище session_secret и rate limit попыток входа.
// Реализации: redis.Client, memory.Client, devstore.Client (для -dev без Redis).
type SessionStore interface {
	CheckLoginRateLimit(ctx context.Context, email string) (allowed bool, err error)
	SetSessionSecret(ctx context.Context, sessionID, secret string) error
	GetSessionSecret(ctx context.Context, sessionID string) (string, error)
	DeleteSessionSecret(ctx context.Context, sessionID string) error
	Close() error
}
