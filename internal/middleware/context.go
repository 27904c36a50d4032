package middleware

import (
	"context"

	"github.com/toiletmap/internal/model"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRoleKey  contextKey = "user_role"
	SessionIDKey contextKey = "session_id"
)

// GetUserID возвращает user_id из контекста (устанавливается AuthServiceValidate или SessionAuth).
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

// GetUserRole возвращает роль пользователя из контекста.
func GetUserRole(ctx context.Context) model.Role {
	v, _ := ctx.Value(UserRoleKey).(model.Role)
	return v
}

func GetSessionID(ctx context.Context) string {
	v, _ := ctx.Value(SessionIDKey).(string)
	return v
}
