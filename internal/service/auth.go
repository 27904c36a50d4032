package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/toiletmap/internal/logger"
	"github.com/toiletmap/internal/model"
	"github.com/toiletmap/internal/repository"
	"github.com/toiletmap/internal/storage"
)

var (
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too short")
	// ErrProfileMissing — валидная сессия без строки профиля. Клиент получает 403
	// и явное состояние ошибки, а не пустой профиль.
	ErrProfileMissing = errors.New("profile row missing")
)

func maskSessionID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "***"
}

type AuthService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	store       storage.SessionStore
}

func NewAuthService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	store storage.SessionStore,
) *AuthService {
	return &AuthService{userRepo: userRepo, sessionRepo: sessionRepo, store: store}
}

// Валидация email: упрощённый формат, без полного RFC.
var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minPasswordLen = 6

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

type AuthResponse struct {
	SessionID     string           `json:"session_id"`
	SessionSecret string           `json:"session_secret"`
	User          model.UserPublic `json:"user"`
}

// Register создаёт пользователя с ролью "user" и сразу открывает сессию.
// Роли admin и maintenance назначаются только прямой записью в БД.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	emailNorm := strings.TrimSpace(strings.ToLower(req.Email))
	name := strings.TrimSpace(req.Name)
	if name == "" || emailNorm == "" || req.Password == "" || req.DeviceID == "" {
		return nil, fmt.Errorf("name, email, password и device_id обязательны")
	}
	if !emailRegexp.MatchString(emailNorm) {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	if _, err := s.userRepo.GetByEmail(ctx, emailNorm); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        emailNorm,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         model.RoleCitizen,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user, req.DeviceID, req.DeviceName)
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"` // опционально
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	emailNorm := strings.TrimSpace(strings.ToLower(req.Email))
	if emailNorm == "" || req.Password == "" || req.DeviceID == "" {
		return nil, fmt.Errorf("email, password и device_id обязательны")
	}
	allowed, err := s.store.CheckLoginRateLimit(ctx, emailNorm)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrRateLimitExceeded
	}
	user, err := s.userRepo.GetByEmail(ctx, emailNorm)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// bcrypt на фиктивном хеше, чтобы время ответа не выдавало наличие аккаунта
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Infof("login: password mismatch email=%s", emailNorm)
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(ctx, user, req.DeviceID, req.DeviceName)
}

var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// issueSession выдаёт session_id + 32-байтовый секрет. В БД хранится только
// sha256-хеш секрета, сам секрет живёт в Redis и у клиента.
func (s *AuthService) issueSession(ctx context.Context, user *model.User, deviceID, deviceName string) (*AuthResponse, error) {
	sessionID := uuid.New().String()
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	secretB64 := base64.StdEncoding.EncodeToString(secret)
	h := sha256.Sum256(secret)
	now := time.Now().UTC()
	session := &model.Session{
		ID:         sessionID,
		UserID:     user.ID,
		DeviceID:   deviceID,
		DeviceName: strings.TrimSpace(deviceName),
		SecretHash: hex.EncodeToString(h[:]),
		LastSeenAt: now,
		CreatedAt:  now,
	}
	if err := s.sessionRepo.Upsert(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.store.SetSessionSecret(ctx, sessionID, secretB64); err != nil {
		logger.Errorf("issueSession: SetSessionSecret failed: %v", err)
		return nil, fmt.Errorf("save session secret: %w", err)
	}
	return &AuthResponse{
		SessionID:     sessionID,
		SessionSecret: secretB64,
		User:          user.ToPublic(),
	}, nil
}

func (s *AuthService) ListSessions(ctx context.Context, userID string) ([]model.Session, error) {
	return s.sessionRepo.ListByUserID(ctx, userID)
}

func (s *AuthService) Logout(ctx context.Context, userID, sessionID string) (bool, error) {
	ok, err := s.sessionRepo.Revoke(ctx, userID, sessionID)
	if err != nil {
		return false, err
	}
	if ok {
		if err := s.store.DeleteSessionSecret(ctx, sessionID); err != nil {
			logger.Errorf("Logout: DeleteSessionSecret session_id=%s: %v", maskSessionID(sessionID), err)
		}
	}
	return ok, nil
}

func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	ids, err := s.sessionRepo.RevokeByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.store.DeleteSessionSecret(ctx, id); err != nil {
			logger.Errorf("LogoutAll: DeleteSessionSecret session_id=%s: %v", maskSessionID(id), err)
		}
	}
	return int64(len(ids)), nil
}

// ValidateRequest проверяет HMAC-подпись запроса и возвращает user_id и роль.
// timestamp — Unix секунды, допустимое отклонение ±30 сек.
func (s *AuthService) ValidateRequest(ctx context.Context, sessionID, timestamp, signature, method, path, body string) (userID string, role model.Role, err error) {
	if sessionID == "" || timestamp == "" || signature == "" {
		logger.Errorf("validate: missing session_id/timestamp/signature")
		return "", "", ErrInvalidCredentials
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	t := time.Unix(ts, 0)
	if time.Since(t) > 30*time.Second || time.Until(t) > 30*time.Second {
		logger.Errorf("validate: timestamp out of window session_id=%s", maskSessionID(sessionID))
		return "", "", ErrInvalidCredentials
	}
	secretB64, err := s.store.GetSessionSecret(ctx, sessionID)
	if err != nil || secretB64 == "" {
		logger.Errorf("validate: no session_secret session_id=%s", maskSessionID(sessionID))
		return "", "", ErrInvalidCredentials
	}
	secret, err := base64.StdEncoding.DecodeString(secretB64)
	if err != nil || len(secret) != 32 {
		return "", "", ErrInvalidCredentials
	}
	tryPath := func(p string) bool {
		mac := hmac.New(sha256.New, secret)
		mac.Write([]byte(method + p + body + timestamp))
		expected := hex.EncodeToString(mac.Sum(nil))
		return hmac.Equal([]byte(signature), []byte(expected))
	}
	if tryPath(path) {
		// подпись совпала
	} else if strings.HasPrefix(path, "/api/") && tryPath(path[4:]) {
		// клиент подписал path без префикса /api (прокси)
	} else {
		logger.Errorf("validate: signature mismatch path=%q", path)
		return "", "", ErrInvalidCredentials
	}
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil || sess == nil {
		logger.Errorf("validate: session not found session_id=%s err=%v", maskSessionID(sessionID), err)
		return "", "", ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Errorf("validate: session %s has no profile row user_id=%s", maskSessionID(sessionID), sess.UserID)
			return "", "", ErrProfileMissing
		}
		return "", "", ErrInvalidCredentials
	}
	if err := s.sessionRepo.UpdateLastSeen(ctx, sessionID, time.Now().UTC()); err != nil {
		logger.Errorf("validate: UpdateLastSeen session_id=%s: %v", maskSessionID(sessionID), err)
	}
	return sess.UserID, user.Role, nil
}
